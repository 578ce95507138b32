package lexrules

import "gopkg.in/yaml.v3"

// ConfigFile is the YAML-serialisable mirror of Config. It exists because
// Config itself carries a *bool (SkipSpaces) and a compiled-friendly shape
// that doesn't map cleanly onto yaml tags; ConfigFile is the wire shape a
// caller round-trips to disk, and ToConfig/FromConfig convert between the
// two. This mirrors the teacher's RulesFile/ApplyRulesToDefaults split
// between an on-disk shape and the shape the rest of the program consumes.
type ConfigFile struct {
	SkipSpaces    *bool               `yaml:"skipSpaces,omitempty"`
	LineComment   string              `yaml:"lineComment,omitempty"`
	NestedComment *NestedCommentFile  `yaml:"nestedComment,omitempty"`
	Parentheses   ParenthesesPreset   `yaml:"parentheses,omitempty"`
	Numbers       *NumberConfig       `yaml:"numbers,omitempty"`
	String        map[string]QuoteSpec `yaml:"string,omitempty"`
	Keywords      []string            `yaml:"keywords,omitempty"`
	Operators     [][]OperatorFile    `yaml:"operators,omitempty"`
}

// NestedCommentFile mirrors NestedComment for YAML.
type NestedCommentFile struct {
	Begin  string `yaml:"begin"`
	End    string `yaml:"end"`
	Nested bool   `yaml:"nested,omitempty"`
}

// OperatorFile mirrors OperatorRule for YAML, spelling associativity as a
// word rather than an int. Only literal operator lexemes round-trip, the
// same restriction FromConfig applies to Keywords below.
type OperatorFile struct {
	Pattern       string `yaml:"pattern"`
	Associativity string `yaml:"associativity,omitempty"`
}

// ToConfig converts a ConfigFile into the Config shape New consumes. Only
// literal keyword lexemes round-trip through YAML; regex keyword Matchers
// are a Go-only construction and are not representable in ConfigFile.
func (cf ConfigFile) ToConfig() (Config, error) {
	cfg := Config{
		SkipSpaces:  cf.SkipSpaces,
		LineComment: cf.LineComment,
		Parentheses: cf.Parentheses,
		Numbers:     cf.Numbers,
	}
	if cf.NestedComment != nil {
		cfg.NestedComment = &NestedComment{
			Begin:  cf.NestedComment.Begin,
			End:    cf.NestedComment.End,
			Nested: cf.NestedComment.Nested,
		}
	}
	if cf.String != nil {
		cfg.String = StringConfig(cf.String)
	}
	for _, kw := range cf.Keywords {
		cfg.Keywords = append(cfg.Keywords, KeywordRule{Match: Lit(kw)})
	}
	for _, group := range cf.Operators {
		var level []OperatorRule
		for _, op := range group {
			assoc, err := parseAssociativity(op.Associativity)
			if err != nil {
				return Config{}, err
			}
			level = append(level, OperatorRule{Match: Lit(op.Pattern), Associativity: assoc})
		}
		cfg.Operators = append(cfg.Operators, level)
	}
	return cfg, nil
}

func parseAssociativity(s string) (Associativity, error) {
	switch s {
	case "", "none":
		return AssocNone, nil
	case "left":
		return AssocLeft, nil
	case "right":
		return AssocRight, nil
	default:
		return AssocNone, &ConfigError{Field: "Operators.Associativity", Msg: "unknown value " + s}
	}
}

// FromConfig converts a Config back into its YAML-serialisable mirror.
// Regex keyword Matchers are dropped rather than lossily stringified;
// callers that need those round-tripped must keep them in Go code.
func FromConfig(cfg Config) ConfigFile {
	cf := ConfigFile{
		SkipSpaces:  cfg.SkipSpaces,
		LineComment: cfg.LineComment,
		Parentheses: cfg.Parentheses,
		Numbers:     cfg.Numbers,
	}
	if cfg.NestedComment != nil {
		cf.NestedComment = &NestedCommentFile{
			Begin:  cfg.NestedComment.Begin,
			End:    cfg.NestedComment.End,
			Nested: cfg.NestedComment.Nested,
		}
	}
	if cfg.String != nil {
		cf.String = map[string]QuoteSpec(cfg.String)
	}
	for _, kw := range cfg.Keywords {
		if !kw.Match.isRegex() {
			cf.Keywords = append(cf.Keywords, kw.Match.Literal)
		}
	}
	for _, group := range cfg.Operators {
		var level []OperatorFile
		for _, op := range group {
			if op.Match.isRegex() {
				continue
			}
			level = append(level, OperatorFile{Pattern: op.Match.Literal, Associativity: op.Associativity.String()})
		}
		cf.Operators = append(cf.Operators, level)
	}
	return cf
}

// DecodeYAML parses YAML bytes into a Config.
func DecodeYAML(data []byte) (Config, error) {
	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Config{}, err
	}
	return cf.ToConfig()
}

// EncodeYAML serialises a Config to YAML bytes.
func EncodeYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(FromConfig(cfg))
}
