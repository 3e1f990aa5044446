package plesk

// Normalize rewrites a parsed response tree into plain nested maps.
//
// Name/value and name/version records ({name: N, value: V}) are the panel's generic attribute
// convention.  A sequence made only of such records becomes a map N -> V, and a lone record held
// under a map key becomes the single entry map {N: V}.  Everything else is walked unchanged, leaf
// scalars are never touched.  Normalize(Normalize(x)) equals Normalize(x) for every tree.
func Normalize(v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(node))
		for k, child := range node {
			out[k] = normalizeValue(child)
		}
		return out
	case Result:
		return Result(Normalize(map[string]interface{}(node)).(map[string]interface{}))
	case []interface{}:
		if m, ok := collapse(node); ok {
			return m
		}
		out := make([]interface{}, len(node))
		for i, child := range node {
			out[i] = Normalize(child)
		}
		return out
	default:
		return v
	}
}

// normalizeValue normalizes a value held under a map key.  Its result is never itself a record.
func normalizeValue(v interface{}) interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		if name, val, isRec := record(m); isRec {
			return map[string]interface{}{name: normalizeValue(val)}
		}
	}
	return Normalize(v)
}

// collapse turns a sequence of records into a map.  A sequence whose collapsed form would itself read
// as a record is left as a sequence, otherwise a second pass would fold it again.
func collapse(seq []interface{}) (map[string]interface{}, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	out := make(map[string]interface{}, len(seq))
	for _, e := range seq {
		m, ok := e.(map[string]interface{})
		if !ok {
			return nil, false
		}
		name, val, isRec := record(m)
		if !isRec {
			return nil, false
		}
		out[name] = normalizeValue(val)
	}
	if _, _, isRec := record(out); isRec {
		return nil, false
	}
	return out, true
}

// record reports whether m is exactly {name, value} or {name, version} with a textual name.
func record(m map[string]interface{}) (name string, val interface{}, ok bool) {
	if len(m) != 2 {
		return "", nil, false
	}
	name, ok = m["name"].(string)
	if !ok {
		return "", nil, false
	}
	if val, ok = m["value"]; ok {
		return name, val, true
	}
	if val, ok = m["version"]; ok {
		return name, val, true
	}
	return "", nil, false
}
