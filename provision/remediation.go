package provision

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
)

// Remediation classes.
const (
	PasswordPolicy    = "password-policy"
	DuplicateUsername = "duplicate-username"
)

// MaxAttempts bounds every remediation class per step and run.
const MaxAttempts = 1

// Rule pairs a panel rejection with the input change that may get past it.  A rule matches when the
// code is listed or the error text contains one of the patterns.
type Rule struct {
	Class    string
	Codes    []int
	Patterns []string
	Apply    func(*Context)
}

func (r Rule) Matches(e *plesk.RemoteError) bool {
	for _, code := range r.Codes {
		if e.Code == code {
			return true
		}
	}
	text := e.Error()
	for _, p := range r.Patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

var (
	passwordRule = Rule{
		Class:    PasswordPolicy,
		Patterns: []string{"The password should"},
		Apply:    renewPassword,
	}
	usernameRule = Rule{
		Class:    DuplicateUsername,
		Codes:    []int{plesk.CodeAlreadyExists, plesk.CodeUserExists},
		Patterns: []string{"Error #1007"},
		Apply:    mutateUsername,
	}
	ftpLoginRule = Rule{
		Class:    DuplicateUsername,
		Codes:    usernameRule.Codes,
		Patterns: usernameRule.Patterns,
		Apply:    mutateFTPLogin,
	}

	// CustomerRules apply to create_client, SubscriptionRules to create_subscription where a
	// duplicate name is an FTP login collision.  The customer login is never changed after the
	// customer exists.
	CustomerRules     = []Rule{passwordRule, usernameRule}
	SubscriptionRules = []Rule{ftpLoginRule}
)

func renewPassword(c *Context) {
	c.Password = generatedPassword(16, 2, 2, 2, 2)
	c.PasswordChanged = true
}

func mutateUsername(c *Context) {
	c.Username = mutateLogin(c.Username)
}

func mutateFTPLogin(c *Context) {
	c.FTPLogin = mutateLogin(c.FTPLogin)
}

// mutateLogin keeps the first seven characters and appends a random lowercase letter.
func mutateLogin(login string) string {
	if len(login) > 7 {
		login = login[:7]
	}
	return login + plesk.RandomLower(1)
}

var remediationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "webhosting",
	Subsystem: "provision",
	Name:      "remediations_total",
	Help:      "Input remediations applied after a panel rejection, by step and class.",
}, []string{"step", "class"})

// drive runs call until it succeeds, fails with an error no rule matches, or the matching rule has
// used up its attempts.  call must read its inputs from c on every invocation.
func drive(c *Context, step string, rules []Rule, call func() (plesk.Result, error)) (plesk.Result, error) {
	if c.attempts == nil {
		c.attempts = map[string]int{}
	}
	for {
		result, err := call()
		if err == nil {
			return result, nil
		}
		remote, ok := plesk.AsRemote(err)
		if !ok {
			return nil, err
		}
		rule, ok := match(rules, remote)
		if !ok {
			return nil, err
		}
		key := step + "/" + rule.Class
		if c.attempts[key] >= MaxAttempts {
			log.WithFields(log.Fields{"service_id": c.ServiceID, "operation": step}).Warnf("%s remediation already used, giving up: %v", rule.Class, remote)
			return nil, err
		}
		c.attempts[key]++
		remediationsTotal.WithLabelValues(step, rule.Class).Inc()
		rule.Apply(c)
		log.WithFields(log.Fields{"service_id": c.ServiceID, "operation": step}).Infof("Retrying after %s remediation: %v", rule.Class, remote)
	}
}

func match(rules []Rule, e *plesk.RemoteError) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(e) {
			return r, true
		}
	}
	return Rule{}, false
}
