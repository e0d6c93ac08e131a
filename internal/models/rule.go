package models

// Rule routes a matching record to URL. Every entry in Match must hold.
type Rule struct {
	URL    string   `json:"url" yaml:"url" validate:"required,http_url"`
	Reason string   `json:"reason" yaml:"reason"`
	Match  []string `json:"match" yaml:"match"`
}

// RuleSet is the rules file document. Order is significant: the first
// matching rule wins.
type RuleSet struct {
	Rules []Rule `json:"rules" yaml:"rules" validate:"dive"`
}
