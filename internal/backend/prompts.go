package backend

import (
	"fmt"
	"strings"
)

// Prompt text for each operation. Prompts stay here so dispatch.go carries
// only the routing and error discipline.

const classifySystemPrompt = `You are an intent analyst for an oilfield data analysis system.
Decide whether the user wants:
1. reports_analysis - analysis of concrete production data (flow rates, output, density, gas utilization, wells, crews, work plans, drilling, measurements, plots over report data)
2. documentation_search - help with the system itself (how to use, configure, where to find a feature, manuals)
3. general_question - a general oil and gas question, terminology, greetings, small talk

Reply with exactly one label: reports_analysis, documentation_search or general_question.`

func classifyMessages(query string) []Message {
	return []Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Classify the intent of this query:\n\n%q\n\nReply with one label only.", query)},
	}
}

const codeRules = `RULES:
1. The table is available as a pandas DataFrame named df; pandas as pd, numpy as np, matplotlib.pyplot as plt are imported.
2. Print every result you compute with print().
3. For charts call plt.show() exactly once at the end; never save files yourself.
4. Output only Python code, no prose and no markdown fences.`

func codeMessages(domain, query, tableInfo, selected string) []Message {
	sys := fmt.Sprintf("You are a data analyst for oilfield operations. Write Python code that answers the user's question against the %s report.\n\n%s", domain, codeRules)
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", query)
	if tableInfo != "" {
		fmt.Fprintf(&b, "\nTable structure:\n%s\n", tableInfo)
	}
	if selected != "" {
		fmt.Fprintf(&b, "\nThe user narrowed the analysis to: %s\n", selected)
	}
	b.WriteString("\nWrite the analysis code.")
	return []Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: b.String()},
	}
}

func finalAnswerMessages(p FinalAnswer) []Message {
	sys := `You are an oil and gas analyst. Explain analysis results to an operations engineer.
Write plain numbers as text ("flow rate 25.5 t/day"); wrap formulas in $$...$$.
Base the explanation strictly on the provided code output.`
	user := fmt.Sprintf("Question: %s\n\nExecuted code:\n%s\n\nCode output:\n%s\n\nAnalysis kind: %s\n\nWrite the final answer for the user.",
		p.Query, p.Code, p.Output, p.SummaryType)
	return []Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: user},
	}
}

func documentationMessages(p DocumentationAnswer) []Message {
	sys := `You are technical support for an oilfield data analysis system.
Answer only from the provided documentation. If the documentation has no
answer, say so honestly. Be concrete and structured.`
	var ctx strings.Builder
	for i, passage := range p.Passages {
		fmt.Fprintf(&ctx, "Document %d:\n%s\n\n", i+1, passage)
	}
	user := fmt.Sprintf("DOCUMENTATION:\n%s\nUSER QUESTION: %s\n\nAnswer using only the documentation above.", ctx.String(), p.Query)
	return []Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: user},
	}
}

func combinedMessages(p CombinedSummary) []Message {
	sys := `You are an oil and gas analyst. Produce a short combined summary across several report analyses.
Write plain numbers as text; wrap formulas in $$...$$.`
	var b strings.Builder
	fmt.Fprintf(&b, "Original question: %q\n\n", p.Query)
	b.WriteString("Build a combined summary answering the question from these report sections:\n\n")
	for i, s := range p.Sections {
		fmt.Fprintf(&b, "Report %d (%s):\n%s\n\n", i+1, s.Title, s.Text)
	}
	return []Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: b.String()},
	}
}
