package plesk

import (
	"strconv"
	"strings"
)

// Result is one normalized <result> record.
type Result map[string]interface{}

// Status is "ok", "error", or "" for reads that carry no status.
func (r Result) Status() string {
	return r.String("status")
}

func (r Result) IsError() bool {
	return r.Status() == "error"
}

// RemoteError builds the typed panel error from errcode/errtext.
func (r Result) RemoteError() *RemoteError {
	code, _ := strconv.Atoi(r.String("errcode"))
	return &RemoteError{Code: code, Text: r.String("errtext")}
}

// String returns a leaf value, "" if the key is missing or not a leaf.
func (r Result) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int parses a numeric leaf.
func (r Result) Int(key string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(r.String(key)), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ID is the numeric object id the panel returns from add operations.
func (r Result) ID() (int64, bool) {
	return r.Int("id")
}

// Map returns a nested record, nil when absent or not a record.
func (r Result) Map(key string) Result {
	if m, ok := r[key].(map[string]interface{}); ok {
		return Result(m)
	}
	return nil
}

// Get walks nested records.
func (r Result) Get(path ...string) interface{} {
	var cur interface{} = map[string]interface{}(r)
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}

// Outcome is the tagged result of a call: Single for operations that answer with one <result>,
// Many for bulk answers with a repeated <result>.
type Outcome struct {
	many    bool
	results []Result
}

func Single(r Result) Outcome {
	return Outcome{results: []Result{r}}
}

func Many(rs []Result) Outcome {
	return Outcome{many: true, results: rs}
}

func (o Outcome) IsMany() bool {
	return o.many
}

// Result is the single record, or the first record of a Many outcome.
func (o Outcome) Result() Result {
	if len(o.results) == 0 {
		return Result{}
	}
	return o.results[0]
}

// Results returns every record in order.
func (o Outcome) Results() []Result {
	return o.results
}

func (o Outcome) Len() int {
	return len(o.results)
}

// Extract selects the result path for entity/verb out of a normalized tree.  A packet level
// <system> block (authentication and parse failures) takes precedence.  An operation node without a
// <result> is returned as a Single record of its own content.
func Extract(tree map[string]interface{}, entity, verb string) (Outcome, error) {
	if sys, ok := tree["system"].(map[string]interface{}); ok {
		return Single(Result(sys)), nil
	}
	ent, ok := asMap(tree[entity])
	if !ok {
		return Outcome{}, &ProtocolParseError{Reason: "response has no <" + entity + "> node"}
	}
	op, ok := asMap(ent[verb])
	if !ok {
		return Outcome{}, &ProtocolParseError{Reason: "response has no <" + entity + "><" + verb + "> node"}
	}
	switch res := op["result"].(type) {
	case nil:
		return Single(Result(op)), nil
	case map[string]interface{}:
		return Single(Result(res)), nil
	case []interface{}:
		rs := make([]Result, 0, len(res))
		for i, e := range res {
			m, ok := e.(map[string]interface{})
			if !ok {
				return Outcome{}, &ProtocolParseError{Reason: "bulk result entry " + strconv.Itoa(i) + " is not a record"}
			}
			rs = append(rs, Result(m))
		}
		return Many(rs), nil
	case string:
		// <result/> with nothing inside
		return Single(Result{}), nil
	default:
		return Outcome{}, &ProtocolParseError{Reason: "unexpected <result> shape"}
	}
}

// asMap accepts an empty element ("") as an empty record.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case string:
		if m == "" {
			return map[string]interface{}{}, true
		}
	}
	return nil, false
}
