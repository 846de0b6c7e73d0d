package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/endgame/docs"
	"github.com/etnz/endgame/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func newPlanner(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Planner",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a retirement planner discussing the outcome of a simulation with its owner.
			The simulation stepped day by day through the retirement years of a Canadian resident,
			paying pensions and benefits, running transactions and filing a tax return every year.

			Ask the experts from the Tools for the figures, they keep context of your previous questions.
			Never make up a figure. Quote the years and amounts you rely on.
			Answer in markdown.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher is an expert grounded on Google Search, for the current
// rules of Canadian pensions, benefits and taxes.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `An expert of the Canadian retirement system: CPP, OAS, GIS, RIF and LIF rules,
		federal and provincial income taxes. Ask the Researcher about the current rules and rates.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert of the Canadian retirement system. Use Google Search to ground
			your answers in the current rules published by the Government of Canada and the provinces.
		`}}},
		},
	}
}

// NewAnalyst is an expert reading the report through tools.
func NewAnalyst(report *renderer.Report) *Expert {
	lib := []Function{summaryFunc(report), queryFunc(report), topicFunc()}
	return &Expert{
		Name: "Analyst",
		Description: `The Analyst reads the report of the simulation run: yearly cash flows, taxes,
		accounts, net worth, survival chances and failed iterations.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the analyst of a retirement simulation. Use the Tools to read its report.
			Start with the Summary, then Query the details you need.
		`}}},
		},
		Library: NewLibrary(lib),
	}
}

func summaryFunc(r *renderer.Report) *Func {
	return &Func{
		Decl: declare("Summary",
			"Summary returns the markdown report of the run: yearly net cash, taxes, net worth and cash flows.",
			"A markdown report."),
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return output(id, "Summary", renderer.RenderRun(r, renderer.RenderOptions{}))
		},
	}
}

func queryFunc(r *renderer.Report) *Func {
	return &Func{
		Decl: declare("Query",
			"Query evaluates a JSONPath expression on the JSON report and returns the result as JSON.\n\n"+topic("query"),
			"The JSON result.",
			[2]string{"path", "A JSONPath expression, e.g. $.histories[0].years[*].net_worth"}),
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			path, err := stringArg(args, "path")
			if err != nil {
				return failure(id, "Query", err)
			}
			v, err := r.Query(path)
			if err != nil {
				return failure(id, "Query", err)
			}
			data, err := json.Marshal(v)
			if err != nil {
				return failure(id, "Query", err)
			}
			return output(id, "Query", string(data))
		},
	}
}

func topicFunc() *Func {
	return &Func{
		Decl: declare("Topic",
			"Topic returns a help topic of the simulator, explaining its settings and reports.\n\n"+topic(docs.Index),
			"The topic, in markdown.",
			[2]string{"name", "The topic name."}),
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			name, err := stringArg(args, "name")
			if err != nil {
				return failure(id, "Topic", err)
			}
			content, err := docs.Topic(name)
			if err != nil {
				return failure(id, "Topic", fmt.Errorf("%w, the topics are:\n\n%s", err, topic(docs.Index)))
			}
			return output(id, "Topic", content)
		},
	}
}

// topic is docs.Topic for embedded topics known to exist.
func topic(name string) string {
	content, err := docs.Topic(name)
	if err != nil {
		panic(err)
	}
	return content
}
