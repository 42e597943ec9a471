package introspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ivalitov/dto-generator-sub003/rule"
)

var errUnknownOption = errors.New("unknown option")

// Tag keys read from struct fields.
const (
	TagRule = "dto"
	TagElem = "dtoelem"
	TagKey  = "dtokey"
)

// parseRule parses one tag value such as "int,min=1,max=10,group=A|B".
// An empty kind is inferred from the Go type by the caller through infer.
// Element rules (field == false) cannot carry groups or remarks.
func parseRule(name, tag string, field bool, infer func() (rule.Kind, bool)) (*rule.FieldRule, error) {
	parts := strings.Split(tag, ",")

	kindName := strings.TrimSpace(parts[0])

	var (
		kind rule.Kind
		ok   bool
	)

	if kindName == "" {
		kind, ok = infer()
		if !ok {
			return nil, rule.Configurationf("field %s: rule kind cannot be inferred, declare it explicitly", name)
		}
	} else {
		kind, ok = rule.ParseKind(kindName)
		if !ok {
			return nil, rule.Configurationf("field %s: unknown rule kind %q", name, kindName)
		}
	}

	r := &rule.FieldRule{
		Field:  name,
		Kind:   kind,
		Params: rule.DefaultParams(kind),
	}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}

		key, value, found := strings.Cut(opt, "=")
		if !found {
			return nil, rule.Configurationf("field %s: option %q must be key=value", name, opt)
		}

		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if !field && (key == "group" || key == "remark") {
			return nil, rule.Configurationf("field %s: %s is not allowed on element rules", name, key)
		}

		if err := applyOption(r, key, value); err != nil {
			return nil, rule.Configurationf("field %s: option %s: %v", name, key, err)
		}
	}

	return r, nil
}

func applyOption(r *rule.FieldRule, key, value string) error {
	p := &r.Params

	switch key {
	case "min", "max":
		return applyBound(r, key, value)
	case "len":
		n, err := strconv.Atoi(value)
		p.MinLen, p.MaxLen = n, n

		return err
	case "minLen":
		return parseInt(value, &p.MinLen)
	case "maxLen":
		return parseInt(value, &p.MaxLen)
	case "size":
		n, err := strconv.Atoi(value)
		p.MinSize, p.MaxSize = n, n

		return err
	case "minSize":
		return parseInt(value, &p.MinSize)
	case "maxSize":
		return parseInt(value, &p.MaxSize)
	case "precision":
		return parseInt(value, &p.Precision)
	case "left":
		return parseInt(value, &p.LeftDays)
	case "right":
		return parseInt(value, &p.RightDays)
	case "charset":
		p.Charsets = p.Charsets[:0:0]
		for _, name := range rule.SplitList(value) {
			p.Charsets = append(p.Charsets, rule.Charset(strings.ToUpper(name)))
		}
	case "chars":
		p.Chars = value
	case "values":
		p.Values = rule.SplitList(value)
	case "gen":
		p.Generator = value
	case "args":
		p.Args = rule.SplitList(value)
	case "group":
		r.Groups = rule.SplitList(value)
	case "remark":
		remark, err := rule.ParseRemark(value)
		if err != nil {
			return err
		}

		r.Remark = &remark
	default:
		return errUnknownOption
	}

	return nil
}

// applyBound interprets min and max according to the rule kind: numeric bounds,
// string lengths or collection sizes.
func applyBound(r *rule.FieldRule, key, value string) error {
	p := &r.Params
	isMin := key == "min"

	switch {
	case r.Kind == rule.KindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}

		if isMin {
			p.Min = n
		} else {
			p.Max = n
		}
	case r.Kind == rule.KindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}

		if isMin {
			p.MinFloat = f
		} else {
			p.MaxFloat = f
		}
	case r.Kind == rule.KindString:
		if isMin {
			return parseInt(value, &p.MinLen)
		}

		return parseInt(value, &p.MaxLen)
	case r.Kind.IsCollection():
		if isMin {
			return parseInt(value, &p.MinSize)
		}

		return parseInt(value, &p.MaxSize)
	default:
		return fmt.Errorf("not supported by %s rules", r.Kind)
	}

	return nil
}

func parseInt(value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}

	*dst = n

	return nil
}
