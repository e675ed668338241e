package cmd

import (
	"github.com/AlecAivazis/survey/v2"
)

// askOneFunc is swapped out in tests.
var askOneFunc = survey.AskOne

// askString prompts for a value unless one was already given.
func askString(current *string, message string, secret bool) error {
	if *current != "" {
		return nil
	}
	var p survey.Prompt = &survey.Input{Message: message}
	if secret {
		p = &survey.Password{Message: message}
	}
	return askOneFunc(p, current, survey.WithValidator(survey.Required))
}
