// Package plesktest provides a scripted panel for tests: replies are queued per entity/operation and
// every request document is recorded.
package plesktest

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
)

// Reply is one scripted answer: a raw response body or a transport failure.
type Reply struct {
	Body string
	Err  error
}

// Call is one recorded request.
type Call struct {
	Entity string
	Verb   string
	Body   []byte
	Tree   map[string]interface{} // parsed request, keyed below <packet>
}

// Param returns the text of the element at path below the operation node.
func (c Call) Param(path ...string) string {
	var cur interface{} = c.Tree[c.Entity]
	cur = descend(cur, c.Verb)
	for _, p := range path {
		cur = descend(cur, p)
	}
	s, _ := cur.(string)
	return s
}

// Has reports whether an element exists at path below the operation node.
func (c Call) Has(path ...string) bool {
	var cur interface{} = c.Tree[c.Entity]
	cur = descend(cur, c.Verb)
	for _, p := range path {
		cur = descend(cur, p)
	}
	return cur != nil
}

func descend(v interface{}, key string) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[key]
}

// Stub is a plesk.Transport answering from a script.  The last queued reply of an operation repeats.
type Stub struct {
	mu     sync.Mutex
	script map[string][]Reply
	calls  []Call
}

func New() *Stub {
	return &Stub{script: map[string][]Reply{}}
}

// On queues replies for entity/verb.
func (s *Stub) On(entity, verb string, replies ...Reply) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entity + "/" + verb
	s.script[key] = append(s.script[key], replies...)
	return s
}

func (s *Stub) Send(ctx context.Context, document []byte) ([]byte, error) {
	tree, err := plesk.ParseResponse(document)
	if err != nil {
		return nil, err
	}
	entity, verb := address(tree)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Entity: entity, Verb: verb, Body: append([]byte(nil), document...), Tree: tree})
	key := entity + "/" + verb
	queue := s.script[key]
	if len(queue) == 0 {
		return nil, &plesk.TransportError{Err: errors.New("no scripted reply for " + key)}
	}
	reply := queue[0]
	if len(queue) > 1 {
		s.script[key] = queue[1:]
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return []byte(reply.Body), nil
}

// Calls returns every recorded request in order.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded requests for entity/verb.
func (s *Stub) CallsTo(entity, verb string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Entity == entity && c.Verb == verb {
			out = append(out, c)
		}
	}
	return out
}

func address(tree map[string]interface{}) (entity, verb string) {
	for e, v := range tree {
		entity = e
		if m, ok := v.(map[string]interface{}); ok {
			for op := range m {
				verb = op
			}
		}
	}
	return
}

// OK answers with a successful result carrying fields.
func OK(entity, verb string, fields map[string]string) Reply {
	all := map[string]string{"status": "ok"}
	for k, v := range fields {
		all[k] = v
	}
	return Reply{Body: Packet(entity, verb, ResultXML(all))}
}

// RemoteError answers with a failed result.
func RemoteError(entity, verb string, code int, text string) Reply {
	return Reply{Body: Packet(entity, verb, ResultXML(map[string]string{
		"status":  "error",
		"errcode": strconv.Itoa(code),
		"errtext": text,
	}))}
}

// Raw answers with body as is.
func Raw(body string) Reply {
	return Reply{Body: body}
}

// Failure makes the transport itself fail.
func Failure(err error) Reply {
	return Reply{Err: &plesk.TransportError{Err: err}}
}

// Packet wraps inner XML into packet/entity/verb.
func Packet(entity, verb, inner string) string {
	return fmt.Sprintf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<packet><%s><%s>%s</%s></%s></packet>", entity, verb, inner, verb, entity)
}

// ResultXML renders a flat <result> element with fields in sorted order.
func ResultXML(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	buf.WriteString("<result>")
	for _, k := range keys {
		buf.WriteString("<" + k + ">")
		xml.EscapeText(&buf, []byte(fields[k]))
		buf.WriteString("</" + k + ">")
	}
	buf.WriteString("</result>")
	return buf.String()
}
