package cmd

import (
	"github.com/etnz/endgame/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	scenarios = predict.Files("*.y*ml")
	reports   = predict.Files("*.json")
)

// Completion is the shell completion of the command line. Install it with
// COMP_INSTALL=1 endgame.
func Completion() *complete.Command {
	topics := predict.Set{"*"}
	if names, err := docs.Names(); err == nil {
		topics = append(topics, names...)
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"log-format": predict.Set{"text", "json"},
		},
		Sub: map[string]*complete.Command{
			"run": {
				Flags: map[string]complete.Predictor{
					"o":          predict.Dirs("*"),
					"iterations": predict.Nothing,
					"isolate":    predict.Nothing,
					"q":          predict.Nothing,
				},
				Args: predict.Or(scenarios, predict.Files("*.toml")),
			},
			"check": {Args: predict.Or(scenarios, predict.Files("*.toml"))},
			"survival": {
				Flags: map[string]complete.Predictor{
					"table": predict.Files("*"),
					"dir":   predict.Dirs("*"),
					"sex":   predict.Set{"male", "female"},
					"birth": predict.Nothing,
					"from":  predict.Nothing,
					"to":    predict.Nothing,
					"ages":  predict.Nothing,
				},
			},
			"report": {
				Flags: map[string]complete.Predictor{
					"format":        predict.Set{"md", "raw", "html"},
					"skip-accounts": predict.Nothing,
					"skip-failures": predict.Nothing,
				},
				Args: reports,
			},
			"query": {Flags: map[string]complete.Predictor{"c": predict.Nothing}, Args: reports},
			"ask":   {Flags: map[string]complete.Predictor{"i": predict.Nothing}, Args: reports},
			"topic": {Flags: map[string]complete.Predictor{"raw": predict.Nothing}, Args: topics},
		},
	}
}
