package api

import (
	"time"

	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/server/dao"
)

// InfoModel is the body of a response from GET /info.
type InfoModel struct {
	Version struct {
		Server    string `json:"server"`
		Converter string `json:"converter"`
	} `json:"version"`
	AuthRequired bool `json:"authRequired"`
}

// ConversionRequestModel is the body of a POST /conversions request.
type ConversionRequestModel struct {
	Terminals []string `json:"terminals"`
	Rules     []string `json:"rules"`
	Start     string   `json:"start,omitempty"`
	Order     []string `json:"order,omitempty"`
	AllOrders bool     `json:"allOrders,omitempty"`
}

// GrammarModel is a grammar as it appears in responses. Rules are in variable
// order, one "A -> x y | z" string per variable.
type GrammarModel struct {
	Start     string   `json:"start"`
	Variables []string `json:"variables"`
	Terminals []string `json:"terminals"`
	Rules     []string `json:"rules"`
}

// OutcomeModel is the result of converting with one ordering. Exactly one of
// Grammar and Error is set.
type OutcomeModel struct {
	Order   []string      `json:"order"`
	Grammar *GrammarModel `json:"grammar,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ConversionModel is a stored conversion as it appears in responses.
type ConversionModel struct {
	URI       string         `json:"uri"`
	ID        string         `json:"id"`
	Subject   string         `json:"subject,omitempty"`
	Input     GrammarModel   `json:"input"`
	AllOrders bool           `json:"allOrders"`
	Outcomes  []OutcomeModel `json:"outcomes"`
	Created   string         `json:"created"`
}

func grammarModel(g grammar.Grammar) GrammarModel {
	m := GrammarModel{
		Start: g.Start().String(),
		Rules: g.RuleStrings(),
	}
	for _, v := range g.Variables() {
		m.Variables = append(m.Variables, v.String())
	}
	for _, t := range g.Terminals() {
		m.Terminals = append(m.Terminals, t.String())
	}
	return m
}

func conversionModel(c dao.Conversion) ConversionModel {
	m := ConversionModel{
		URI:       PathPrefix + "/conversions/" + c.ID.String(),
		ID:        c.ID.String(),
		Subject:   c.Subject,
		Input:     grammarModel(c.Input),
		AllOrders: c.AllOrders,
		Outcomes:  make([]OutcomeModel, len(c.Outcomes)),
		Created:   c.Created.Format(time.RFC3339),
	}
	for i, o := range c.Outcomes {
		m.Outcomes[i] = OutcomeModel{Order: o.Order}
		if o.Succeeded() {
			gm := grammarModel(o.Output)
			m.Outcomes[i].Grammar = &gm
		} else {
			m.Outcomes[i].Error = o.Error
		}
	}
	return m
}
