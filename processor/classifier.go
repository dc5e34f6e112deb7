package processor

import (
	"regexp"
	"strings"

	"watchlist/models"
)

// Candidate is a record together with its parsed symbol.
type Candidate struct {
	Record models.Record
	Symbol models.ParsedSymbol
}

// Rule is a single admission check. Admit returns false to reject.
type Rule struct {
	Name  string
	Admit func(Candidate) bool
}

// Rule names, used as keys in rejection counts.
const (
	RuleStatus     = "status"
	RuleContract   = "contract"
	RuleProduct    = "product"
	RuleStableFlag = "stable_flag"
	RuleAssetClass = "asset_class"
	RuleQuote      = "quote"
	RuleDenylist   = "denylist"
	RulePattern    = "pattern"
	RuleSuffix     = "suffix"
	RuleStableName = "stable_name"
	RuleWrapped    = "wrapped"
	RulePosition   = "position"
)

// Classifier applies rules in order; all must pass.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds the rule chain for a profile: status, quote, deny rules,
// then position.
func NewClassifier(p Profile) *Classifier {
	var rules []Rule
	if len(p.Statuses) > 0 {
		rules = append(rules, StatusRule(p.Statuses))
	}
	if len(p.Contracts) > 0 {
		rules = append(rules, ContractRule(p.Contracts))
	}
	if p.Product != "" {
		rules = append(rules, ProductRule(p.Product))
	}
	if p.RejectStableFlag {
		rules = append(rules, StableFlagRule())
	}
	if len(p.AssetClasses) > 0 {
		rules = append(rules, AssetClassRule(p.AssetClasses))
	}
	if p.Quote != "" {
		rules = append(rules, QuoteRule(p.Quote))
	}
	if len(p.Denylist) > 0 {
		rules = append(rules, DenylistRule(p.Denylist))
	}
	if len(p.Patterns) > 0 {
		rules = append(rules, PatternRule(p.Patterns))
	}
	if len(p.DenySuffixes) > 0 {
		rules = append(rules, SuffixRule(p.DenySuffixes))
	}
	if len(p.StableNames) > 0 {
		rules = append(rules, StableNameRule(p.StableNames))
	}
	if len(p.WrapPrefixes) > 0 || p.WrappedName != "" {
		rules = append(rules, WrappedRule(p.WrappedName, p.WrapPrefixes))
	}
	if p.RequirePosition {
		rules = append(rules, PositionRule())
	}
	return &Classifier{rules: rules}
}

// Admit reports whether cand passes every rule. On rejection it also returns
// the name of the first failing rule.
func (c *Classifier) Admit(cand Candidate) (bool, string) {
	for _, r := range c.rules {
		if !r.Admit(cand) {
			return false, r.Name
		}
	}
	return true, ""
}

func toSet(values []string, fold func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[fold(v)] = struct{}{}
	}
	return set
}

func StatusRule(allowed []string) Rule {
	set := toSet(allowed, strings.ToUpper)
	return Rule{Name: RuleStatus, Admit: func(c Candidate) bool {
		_, ok := set[strings.ToUpper(c.Record.Status)]
		return ok
	}}
}

func ContractRule(allowed []string) Rule {
	set := toSet(allowed, strings.ToUpper)
	return Rule{Name: RuleContract, Admit: func(c Candidate) bool {
		_, ok := set[strings.ToUpper(c.Record.Contract)]
		return ok
	}}
}

// ProductRule admits symbols whose leading product token equals product.
func ProductRule(product string) Rule {
	return Rule{Name: RuleProduct, Admit: func(c Candidate) bool {
		return strings.EqualFold(c.Symbol.Product, product)
	}}
}

// StableFlagRule rejects records the provider itself flags as stable.
func StableFlagRule() Rule {
	return Rule{Name: RuleStableFlag, Admit: func(c Candidate) bool {
		return !c.Record.Stable
	}}
}

func AssetClassRule(allowed []string) Rule {
	set := toSet(allowed, strings.ToUpper)
	return Rule{Name: RuleAssetClass, Admit: func(c Candidate) bool {
		_, ok := set[strings.ToUpper(c.Record.AssetClass)]
		return ok
	}}
}

// QuoteRule admits only the target quote currency. An absent quote is rejected.
func QuoteRule(quote string) Rule {
	return Rule{Name: RuleQuote, Admit: func(c Candidate) bool {
		return c.Symbol.Quote != "" && strings.EqualFold(c.Symbol.Quote, quote)
	}}
}

// DenylistRule rejects bases that are literal members of list, case-insensitively.
func DenylistRule(list []string) Rule {
	set := toSet(list, strings.ToUpper)
	return Rule{Name: RuleDenylist, Admit: func(c Candidate) bool {
		_, denied := set[strings.ToUpper(c.Symbol.Base)]
		return !denied
	}}
}

func PatternRule(patterns []*regexp.Regexp) Rule {
	return Rule{Name: RulePattern, Admit: func(c Candidate) bool {
		for _, re := range patterns {
			if re.MatchString(c.Symbol.Base) {
				return false
			}
		}
		return true
	}}
}

func SuffixRule(suffixes []string) Rule {
	return Rule{Name: RuleSuffix, Admit: func(c Candidate) bool {
		base := strings.ToUpper(c.Symbol.Base)
		for _, s := range suffixes {
			if strings.HasSuffix(base, strings.ToUpper(s)) {
				return false
			}
		}
		return true
	}}
}

// StableNameRule rejects records whose display name carries a stablecoin marker.
func StableNameRule(markers []string) Rule {
	return Rule{Name: RuleStableName, Admit: func(c Candidate) bool {
		name := strings.ToLower(c.Record.Name)
		for _, m := range markers {
			if strings.Contains(name, m) {
				return false
			}
		}
		return true
	}}
}

// WrappedRule rejects wrapped or staked derivatives. A symbol equal to a
// prefix is kept.
func WrappedRule(namePrefix string, prefixes []string) Rule {
	return Rule{Name: RuleWrapped, Admit: func(c Candidate) bool {
		if namePrefix != "" && strings.HasPrefix(strings.ToLower(c.Record.Name), namePrefix) {
			return false
		}
		sym := strings.ToLower(c.Symbol.Base)
		for _, p := range prefixes {
			if strings.HasPrefix(sym, p) && len(sym) > len(p) {
				return false
			}
		}
		return true
	}}
}

// PositionRule rejects zero positions.
func PositionRule() Rule {
	return Rule{Name: RulePosition, Admit: func(c Candidate) bool {
		return c.Record.Position != 0
	}}
}
