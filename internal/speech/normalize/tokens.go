package normalize

// Replacement maps one source token to the words spoken in its place.
type Replacement struct {
	Token  string `yaml:"token"  json:"token"`
	Spoken string `yaml:"spoken" json:"spoken"`
}

// TokenMap is an ordered list of replacements. Entries are applied in order,
// each one over the output of the previous.
type TokenMap []Replacement

// DefaultTokens returns the built-in table of programming abbreviations.
func DefaultTokens() TokenMap {
	return TokenMap{
		{Token: "var", Spoken: "variable"},
		{Token: "let", Spoken: "let"},
		{Token: "const", Spoken: "constant"},
		{Token: "func", Spoken: "function"},
		{Token: "fn", Spoken: "function"},
		{Token: "int", Spoken: "integer"},
		{Token: "bool", Spoken: "boolean"},
		{Token: "str", Spoken: "string"},
	}
}
