package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
)

const CompanyPolicyToolName = "fetch_company_policy"

// Call is one of a closed set of tool invocations. New tools add a variant
// here and a case in Registry.Execute.
type Call interface {
	ToolName() string
	Arguments() map[string]any
	isCall()
}

type PolicyTopic string

const (
	TopicRefund     PolicyTopic = "refund"
	TopicVacation   PolicyTopic = "vacation"
	TopicRemoteWork PolicyTopic = "remote_work"
	TopicExpenses   PolicyTopic = "expenses"
)

// detection order, first match wins
var topicOrder = []PolicyTopic{TopicRefund, TopicVacation, TopicRemoteWork, TopicExpenses}

var topicKeywords = map[PolicyTopic][]string{
	TopicRefund:     {"refund"},
	TopicVacation:   {"vacation"},
	TopicRemoteWork: {"remote_work", "remote work"},
	TopicExpenses:   {"expenses"},
}

type CompanyPolicyCall struct {
	Topic PolicyTopic
}

func (CompanyPolicyCall) ToolName() string { return CompanyPolicyToolName }

func (c CompanyPolicyCall) Arguments() map[string]any {
	return map[string]any{"policy_name": string(c.Topic)}
}

func (CompanyPolicyCall) isCall() {}

type Description struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// Registry holds the side-effect free functions answers may be augmented with.
type Registry struct {
	policies map[PolicyTopic]string
}

func DefaultRegistry() *Registry {
	return NewRegistry(map[PolicyTopic]string{
		TopicRefund:     "Our refund policy allows returns within 30 days.",
		TopicVacation:   "Employees get 15 days paid vacation.",
		TopicRemoteWork: "Remote work allowed 3 days a week.",
		TopicExpenses:   "Expenses must be submitted within 30 days.",
	})
}

func NewRegistry(policies map[PolicyTopic]string) *Registry {
	cp := make(map[PolicyTopic]string, len(policies))
	for k, v := range policies {
		cp[k] = v
	}
	return &Registry{policies: cp}
}

// Detect picks at most one call for the question. Only questions mentioning
// "policy" are considered.
func (r *Registry) Detect(question string) (Call, bool) {
	q := strings.ToLower(question)
	if !strings.Contains(q, "policy") {
		return nil, false
	}
	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(q, kw) {
				return CompanyPolicyCall{Topic: topic}, true
			}
		}
	}
	return nil, false
}

func (r *Registry) Execute(ctx context.Context, call Call) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ragErrors.Wrap(ragErrors.ToolUnavailable, err, "tool call cancelled")
	}
	switch c := call.(type) {
	case CompanyPolicyCall:
		return r.fetchCompanyPolicy(c.Topic), nil
	case nil:
		return "", ragErrors.New(ragErrors.ToolUnavailable, "no tool call given")
	default:
		return "", ragErrors.New(ragErrors.ToolUnavailable, "unsupported tool %s", call.ToolName())
	}
}

func (r *Registry) fetchCompanyPolicy(topic PolicyTopic) string {
	if text, ok := r.policies[PolicyTopic(strings.ToLower(string(topic)))]; ok {
		return text
	}
	return fmt.Sprintf("Policy '%s' not found.", topic)
}

func (r *Registry) Describe() []Description {
	return []Description{{
		Name:        CompanyPolicyToolName,
		Description: "Fetch a specific company policy",
		Parameters:  map[string]string{"policy_name": "string"},
	}}
}
