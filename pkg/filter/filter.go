// Package filter redacts PII from generated answers and enforces the
// content policy on what remains.
package filter

import "regexp"

// Redaction tokens substituted for matched content.
const (
	EmailRedactionToken  = "[REDACTED_EMAIL]"
	SSNRedactionToken    = "[REDACTED_SSN]"
	PhoneRedactionToken  = "[REDACTED_PHONE]"
	PolicyRedactionToken = "[REDACTED_FOR_POLICY]"
)

// Redaction entry types.
const (
	TypeEmail       = "email"
	TypeSSN         = "ssn"
	TypePhone       = "phone"
	TypePolicyBlock = "policy_block"
)

const (
	// DefaultPolicyKeyword triggers the policy length check.
	DefaultPolicyKeyword = "confidential"

	// DefaultPolicyMaxLen is the length above which keyword-bearing text is
	// blocked outright.
	DefaultPolicyMaxLen = 1000
)

// piiPattern pairs a redaction label with its pattern and token. Order
// matters: patterns run in declaration order over the progressively
// redacted text.
type piiPattern struct {
	label string
	re    *regexp.Regexp
	token string
}

var piiPatterns = []piiPattern{
	{TypeEmail, regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`), EmailRedactionToken},
	{TypeSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), SSNRedactionToken},
	{TypePhone, regexp.MustCompile(`\b(?:\+?\d{1,3})?[-.\s]?(?:\d{2,4}[-.\s]?){2,4}\d{2,4}\b`), PhoneRedactionToken},
}

// Entry records one redaction that fired.
type Entry struct {
	// Type is the pattern label (email, ssn, phone) or policy_block.
	Type string `json:"type"`

	// Matches holds the literal strings that were redacted. Empty for
	// policy blocks.
	Matches []string `json:"matches,omitempty"`

	// Reason explains a policy block. Empty for PII entries.
	Reason string `json:"reason,omitempty"`
}

// Redaction is the metadata attached to a filtered response.
type Redaction struct {
	Redactions []Entry `json:"redactions"`
}

// PolicyBlocked reports whether the response body was replaced by the
// policy-block token.
func (r Redaction) PolicyBlocked() bool {
	for _, e := range r.Redactions {
		if e.Type == TypePolicyBlock {
			return true
		}
	}
	return false
}

// Config holds the policy surface of the filter. The PII pattern set is
// fixed; the policy keyword and threshold are deployment choices.
type Config struct {
	// PolicyKeyword triggers the block check. Defaults to
	// DefaultPolicyKeyword if empty. Matched case-insensitively.
	PolicyKeyword string

	// PolicyMaxLen is the length threshold for the block check. Defaults to
	// DefaultPolicyMaxLen if zero.
	PolicyMaxLen int
}

// Filter applies PII redaction and the content policy.
type Filter struct {
	keywordRE    *regexp.Regexp
	policyMaxLen int
}

// New creates a Filter from config, applying defaults for zero values.
func New(cfg Config) *Filter {
	keyword := cfg.PolicyKeyword
	if keyword == "" {
		keyword = DefaultPolicyKeyword
	}
	maxLen := cfg.PolicyMaxLen
	if maxLen <= 0 {
		maxLen = DefaultPolicyMaxLen
	}
	return &Filter{
		keywordRE:    regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword)),
		policyMaxLen: maxLen,
	}
}

// Apply redacts PII then runs the policy check on the already-redacted
// text. PII redaction always happens first so policy decisions never see
// raw identifiers.
func (f *Filter) Apply(text string) (string, Redaction) {
	var redaction Redaction
	filtered := text

	for _, p := range piiPatterns {
		matches := p.re.FindAllString(filtered, -1)
		if len(matches) == 0 {
			continue
		}
		redaction.Redactions = append(redaction.Redactions, Entry{
			Type:    p.label,
			Matches: matches,
		})
		filtered = p.re.ReplaceAllString(filtered, p.token)
	}

	if f.keywordRE.MatchString(filtered) && len(filtered) > f.policyMaxLen {
		filtered = PolicyRedactionToken
		redaction.Redactions = append(redaction.Redactions, Entry{
			Type:   TypePolicyBlock,
			Reason: "long keyword-bearing content",
		})
	}

	return filtered, redaction
}
