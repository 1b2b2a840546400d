// Package quiz implements the trivia feature: the per-channel session state
// machine, the country fact catalog, and the chat command surface.
package quiz

import (
	_ "embed"
	"encoding/json"

	"github.com/onnwee/quizbot/failure"
	"github.com/onnwee/quizbot/registry"
)

//go:embed countries.json
var countriesJSON []byte

// Country is one immutable trivia fact, loaded once at startup.
type Country struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Flag       string   `json:"flag"`
	Capitals   []string `json:"capitals"`
	Languages  []string `json:"languages"`
	Continents []string `json:"continents"`
}

// loadCountries parses the embedded dataset into a registry keyed by ISO
// code.
func loadCountries() (*registry.Registry[Country], error) {
	var countries []Country
	if err := json.Unmarshal(countriesJSON, &countries); err != nil {
		return nil, failure.Wrap(err, "quiz.loadCountries", "failed to parse countries dataset")
	}
	catalog := registry.New[Country]()
	for _, c := range countries {
		if err := catalog.Add(c.Code, c); err != nil {
			return nil, failure.Wrap(err, "quiz.loadCountries", "duplicate country code %q", c.Code)
		}
	}
	if catalog.Len() == 0 {
		return nil, failure.New(failure.KindEmptyCollection, "quiz.loadCountries", "countries dataset is empty")
	}
	return catalog, nil
}
