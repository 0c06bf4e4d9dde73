package classifier

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

const (
	recDelim = "##"
	tupDelim = "<||>"
	endDelim = "<|COMPLETE|>"
)

// basic safety limits to avoid pathological model output
const (
	maxContentLen = 16 * 1024
	maxRecords    = 20
	maxTupleLen   = 1024
	maxLabelLen   = 120
	maxErrSnippet = 200
)

// Verdict is the parsed model answer before the confidence filter.
type Verdict struct {
	Category        string
	CategoryConf    float64
	SubCategory     string
	SubCategoryConf float64
	ParsingMetadata map[string]any
}

// Errors returns the parse problems recorded for this verdict.
func (v *Verdict) Errors() []string {
	if v == nil || v.ParsingMetadata == nil {
		return nil
	}
	errs, _ := v.ParsingMetadata["parsing_errors"].([]string)
	return errs
}

type rawTuple struct {
	Type  string
	Parts []string
}

func parseRawTuple(s string) (*rawTuple, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tuple")
	}
	if len(s) > maxTupleLen {
		return nil, fmt.Errorf("tuple too large")
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("invalid tuple parens")
	}
	inner := s[1 : len(s)-1]
	parts := strings.SplitN(inner, tupDelim, 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid tuple parts")
	}
	return &rawTuple{Type: strings.ToLower(strings.TrimSpace(parts[0])), Parts: parts}, nil
}

func parseFloatInRange(s, name string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s invalid number", name)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s out of range", name)
	}
	return v, nil
}

func cleanLabel(s string) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" || !utf8.ValidString(s) || len(s) > maxLabelLen {
		return "", false
	}
	return s, true
}

// ParseVerdict reads the tuple format the classifier prompt asks for:
//
//	(category<||>Stock Broker<||>0.93)##(subcategory<||>Order Execution Delay<||>0.71)<|COMPLETE|>
//
// Malformed records are skipped and noted in ParsingMetadata. Categories
// outside the taxonomy are dropped. When a type repeats, the more confident
// record wins.
func ParseVerdict(content string) (v *Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "classifier_parser").Msgf("panic recovered: %v", r)
			err = errx.Internal(fmt.Errorf("classifier parser panic: %v", r))
			v = nil
		}
	}()

	v = &Verdict{ParsingMetadata: map[string]any{}}
	addErr := func(msg string) {
		errs, _ := v.ParsingMetadata["parsing_errors"].([]string)
		v.ParsingMetadata["parsing_errors"] = append(errs, msg)
	}

	if len(content) > maxContentLen {
		content = content[:maxContentLen]
		v.ParsingMetadata["truncated"] = true
	}
	if idx := strings.Index(content, endDelim); idx >= 0 {
		content = content[:idx]
	} else {
		v.ParsingMetadata["incomplete"] = true
	}

	processed := 0
	for _, rec := range strings.Split(content, recDelim) {
		if processed >= maxRecords {
			v.ParsingMetadata["records_capped"] = true
			break
		}
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		processed++

		rt, rerr := parseRawTuple(rec)
		if rerr != nil {
			addErr(fmt.Sprintf("bad_record: %s", safeSnippet(rec)))
			continue
		}
		label, ok := cleanLabel(rt.Parts[1])
		if !ok {
			addErr(rt.Type + ": invalid label")
			continue
		}
		conf, cerr := parseFloatInRange(rt.Parts[2], rt.Type+".confidence", 0, 1)
		if cerr != nil {
			addErr(rt.Type + ": invalid confidence")
			continue
		}

		switch rt.Type {
		case "category":
			canon := canonicalCategory(label)
			if canon == "" {
				addErr("category: outside taxonomy: " + safeSnippet(label))
				continue
			}
			if v.Category == "" || conf > v.CategoryConf {
				v.Category, v.CategoryConf = canon, conf
			}
		case "subcategory", "sub_category":
			if v.SubCategory == "" || conf > v.SubCategoryConf {
				v.SubCategory, v.SubCategoryConf = label, conf
			}
		default:
			addErr("unknown tuple type")
		}
	}
	return v, nil
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
