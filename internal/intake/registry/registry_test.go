package registry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { logx.Disable() }

const brokersCSV = "broker_name,aliases\n" +
	"HDFC Securities Limited,HDFC Securities|HDFC Sec\n" +
	"Zerodha Broking Limited,Zerodha\n" +
	"ICICI Securities Limited,ICICI Direct|ISEC\n" +
	"Angel One Limited,Angel Broking\n" +
	"Kotak Securities Limited,Kotak\n"

const exchangesCSV = "exchange_name|aliases\n" +
	"National Stock Exchange of India Limited|NSE\n" +
	"BSE Limited|BSE;Bombay Stock Exchange\n" +
	"Multi Commodity Exchange of India Limited|MCX\n"

var fundRows = []Row{
	{Name: "Aditya Birla Sun Life Mutual Fund"},
	{Name: "SBI Mutual Fund"},
	{Name: "HDFC Mutual Fund"},
	{Name: "Nippon India Mutual Fund (Formerly Reliance Mutual Fund)"},
	{Name: "UTI Mutual Fund"},
	{Name: "quant mutual fund"},
}

func mustIndex(t *testing.T, kind model.EntityKind, src string) *Index {
	t.Helper()
	p := DefaultProfile(kind)
	rows, err := ParseRows(strings.NewReader(src), p.NameHeaders, p.AliasHeaders)
	require.NoError(t, err)
	return NewIndex(p, rows)
}

func brokers(t *testing.T) *Index   { return mustIndex(t, model.KindBroker, brokersCSV) }
func exchanges(t *testing.T) *Index { return mustIndex(t, model.KindExchange, exchangesCSV) }
func funds() *Index                 { return NewIndex(DefaultProfile(model.KindMutualFund), fundRows) }

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  HDFC   Securities Ltd. ": "hdfc securities ltd",
		"Ｚｅｒｏｄｈａ":                 "zerodha",
		"Tata & Sons (P) Ltd":       "tata & sons p ltd",
		"":                          "",
		"a\tb\nc":                   "a b c",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100.0, ratio("abc", "abc"))
	assert.Equal(t, 0.0, ratio("abc", "xyz"))
	assert.Equal(t, 100.0, partialRatio("nse", "the nse exchange"))
	assert.Equal(t, 100.0, tokenSetRatio("hdfc securities", "securities hdfc limited"))
	assert.InDelta(t, 85.7, partialRatio("hdfc securites", "hdfc securities limited"), 0.1)
	assert.Equal(t, 0.0, tokenSetRatio("", "x"))
}

func TestParseRows_HeaderAliasesAndDelimiter(t *testing.T) {
	rows, err := ParseRows(strings.NewReader(exchangesCSV), []string{"exchange_name", "name"}, aliasHeaders)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "BSE Limited", rows[1].Name)
	assert.Equal(t, []string{"BSE", "Bombay Stock Exchange"}, rows[1].Aliases)
}

func TestParseRows_HeaderlessWithBOM(t *testing.T) {
	src := "\ufeffZerodha Broking Ltd\n\n  \nUpstox\n"
	rows, err := ParseRows(strings.NewReader(src), []string{"name"}, aliasHeaders)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Zerodha Broking Ltd", rows[0].Name)
	assert.Empty(t, rows[0].Aliases)
}

func TestParseRows_SemicolonHeader(t *testing.T) {
	src := "\ufeffName;AKA\nFoo Capital;FC/Foo\nBar Advisory;\n"
	rows, err := ParseRows(strings.NewReader(src), []string{"name"}, aliasHeaders)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"FC", "Foo"}, rows[0].Aliases)
}

func TestParseRows_Empty(t *testing.T) {
	rows, err := ParseRows(strings.NewReader(""), []string{"name"}, aliasHeaders)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadFile_MissingIsEmpty(t *testing.T) {
	rows, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), []string{"name"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, NewIndex(DefaultProfile(model.KindBroker), rows).Len())
}

func TestIndex_DedupByNormalizedName(t *testing.T) {
	idx := mustIndex(t, model.KindCompany, "Foo Ltd\nFOO LTD.\nfoo   ltd\nBar Industries\n")
	assert.Equal(t, []string{"Foo Ltd", "Bar Industries"}, idx.Names())
}

func TestIndex_ResolveIdempotentAcrossVariants(t *testing.T) {
	for _, idx := range []*Index{brokers(t), exchanges(t), funds()} {
		for _, name := range idx.Names() {
			variants := []string{
				name,
				strings.ToUpper(name),
				strings.ToLower(name),
				"  " + name + ".  ",
				toFullWidth(name),
			}
			for _, v := range variants {
				got, ok := idx.Resolve(v)
				require.True(t, ok, "%s: %q", idx.Kind(), v)
				assert.Equal(t, name, got)
				again, ok := idx.Resolve(got)
				require.True(t, ok)
				assert.Equal(t, got, again)
			}
		}
	}
}

func toFullWidth(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '!' && r <= '~':
			b.WriteRune(r + 0xFEE0)
		case r == ' ':
			b.WriteRune('　')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestIndex_ResolveAlias(t *testing.T) {
	idx := brokers(t)
	got, ok := idx.Resolve("zerodha")
	require.True(t, ok)
	assert.Equal(t, "Zerodha Broking Limited", got)
	assert.True(t, idx.IsRegistered("ICICI direct"))
	assert.False(t, idx.IsRegistered("Groww"))
	_, ok = idx.Resolve("   ")
	assert.False(t, ok)
}

func TestIndex_SuggestExactIsSingle(t *testing.T) {
	got := brokers(t).Suggest("HDFC Sec")
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{Name: "HDFC Securities Limited", Score: 100, Similarity: 100}, got[0])
}

func TestIndex_SuggestCutoffAndOrder(t *testing.T) {
	idx := brokers(t)
	for _, q := range []string{"HDFC Securites", "kotak sec", "hd", "ang", "icici securities ltd", "zzzzzzzz", "sec"} {
		got := idx.Suggest(q)
		p := idx.profile
		cutoff := p.Cutoff
		if len([]rune(Normalize(q))) <= p.ShortLen {
			cutoff = p.ShortCutoff
		}
		assert.LessOrEqual(t, len(got), p.Limit)
		for i, s := range got {
			assert.GreaterOrEqual(t, s.Score, cutoff, "query %q candidate %q", q, s.Name)
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Score, s.Score, "query %q not sorted", q)
			}
		}
	}
}

func TestIndex_SuggestNearMissRanksTarget(t *testing.T) {
	got := brokers(t).Suggest("HDFC Securites")
	require.NotEmpty(t, got)
	assert.Equal(t, "HDFC Securities Limited", got[0].Name)
	assert.Less(t, got[0].Similarity, 92.0)
}

func TestIndex_ShortQueryFallbackBucket(t *testing.T) {
	idx := mustIndex(t, model.KindCompany, "Wipro Limited\nAlpha Wxyz Corp\n")
	got := idx.Suggest("wxy")
	require.NotEmpty(t, got)
	for _, s := range got {
		assert.GreaterOrEqual(t, s.Score, 30.0)
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	assert.Empty(t, brokers(t).Suggest("  "))
	assert.Empty(t, brokers(t).Candidates(""))
}

func TestIndex_Validate(t *testing.T) {
	idx := brokers(t)

	got, ok := idx.Validate("zerodha broking limited")
	require.True(t, ok)
	assert.Equal(t, "Zerodha Broking Limited", got)

	got, ok = idx.Validate("Kotak")
	require.True(t, ok)
	assert.Equal(t, "Kotak Securities Limited", got)

	got, ok = idx.Validate("Zerodha Broking Limted")
	require.True(t, ok, "single typo in a long name clears the gate")
	assert.Equal(t, "Zerodha Broking Limited", got)

	_, ok = idx.Validate("HDFC Securites")
	assert.False(t, ok)

	_, ok = idx.Validate("Groww Invest Tech")
	assert.False(t, ok)
}

func TestIndex_Candidates(t *testing.T) {
	idx := brokers(t)
	got := idx.Candidates("HDFC Securites")
	require.NotEmpty(t, got)
	assert.Equal(t, "HDFC Securities Limited", got[0])
	assert.LessOrEqual(t, len(got), 8)

	seen := map[string]bool{}
	for _, n := range got {
		assert.False(t, seen[n], "duplicate %q", n)
		seen[n] = true
	}
}

func TestIndex_DetectBoundedAndPresent(t *testing.T) {
	idx := brokers(t)
	texts := []string{
		"My broker HDFC Securities delayed my order on NSE",
		"zerodha and kotak and angel broking and isec and icici direct and hdfc sec all failed",
		"nothing relevant here",
		"",
	}
	for _, text := range texts {
		hits := idx.Detect(text)
		assert.LessOrEqual(t, len(hits), MaxDetected)
		norm := Normalize(text)
		for _, h := range hits {
			assert.True(t, keyPresent(idx, h, norm), "%q not present in %q", h, text)
		}
	}
	assert.Equal(t, []string{"HDFC Securities Limited"}, idx.Detect(texts[0]))
}

func keyPresent(idx *Index, canon, text string) bool {
	if strings.Contains(text, Normalize(canon)) {
		return true
	}
	for k, c := range idx.aliases {
		if c == canon && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func TestIndex_NilIsEmpty(t *testing.T) {
	var idx *Index
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Suggest("x"))
	assert.Nil(t, idx.Detect("x"))
	_, ok := idx.Validate("x")
	assert.False(t, ok)
}

func TestMutualFund_Canonicalize(t *testing.T) {
	assert.Equal(t, []string{
		"Aditya Birla Sun Life Mutual Fund",
		"SBI Mutual Fund",
		"HDFC Mutual Fund",
		"Nippon India Mutual Fund",
		"UTI Mutual Fund",
		"Quant Mutual Fund",
	}, funds().Names())
	assert.Equal(t, "Axis Mutual Fund", canonicalFundName("axis mutual fund / axis amc"))
}

func TestMutualFund_Resolve(t *testing.T) {
	idx := funds()
	cases := map[string]string{
		"sbi mf":                    "SBI Mutual Fund",
		"Reliance Mutual Fund":      "Nippon India Mutual Fund",
		"ABSL MF":                   "Aditya Birla Sun Life Mutual Fund",
		"hdfc":                      "HDFC Mutual Fund",
		"Aditya Birla Sun Life AMC": "Aditya Birla Sun Life Mutual Fund",
	}
	for in, want := range cases {
		got, ok := idx.Resolve(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := idx.Resolve("fund")
	assert.False(t, ok)
}

func TestMutualFund_SuggestWordBoundary(t *testing.T) {
	idx := funds()
	got := idx.Suggest("I invested in SBI MF and my units are missing")
	require.Len(t, got, 1)
	assert.Equal(t, "SBI Mutual Fund", got[0].Name)
	assert.Equal(t, 99.0, got[0].Score)

	assert.Empty(t, idx.Suggest("public sector fund units"))
	assert.Empty(t, idx.Suggest("fund units"))
}

func TestMutualFund_SuggestWindowsAboveCutoff(t *testing.T) {
	idx := funds()
	got := idx.Suggest("my sip in aditya birla sunlife was not processed")
	for _, s := range got {
		assert.GreaterOrEqual(t, s.Score, 92.0)
	}
}

func TestMutualFund_Detect(t *testing.T) {
	hits := funds().Detect("Redemption from Nippon India MF and SBI mutual is pending")
	assert.ElementsMatch(t, []string{"SBI Mutual Fund", "Nippon India Mutual Fund"}, hits)
}

func newTestSet() *Set {
	p := DefaultProfile(model.KindBroker)
	brokerRows, _ := ParseRows(strings.NewReader(brokersCSV), p.NameHeaders, p.AliasHeaders)
	p = DefaultProfile(model.KindExchange)
	exchangeRows, _ := ParseRows(strings.NewReader(exchangesCSV), p.NameHeaders, p.AliasHeaders)
	return NewSet(map[model.EntityKind]Source{
		model.KindBroker:     RowsSource(brokerRows),
		model.KindExchange:   RowsSource(exchangeRows),
		model.KindCompany:    RowsSource([]Row{{Name: "Infosys Limited"}, {Name: "Tata Motors Limited", Aliases: []string{"Tata Motors"}}}),
		model.KindMutualFund: RowsSource(fundRows),
		model.KindAdviser:    RowsSource([]Row{{Name: "Alpha Wealth Investment Adviser"}}),
	})
}

func TestSet_LoadAndSuggest(t *testing.T) {
	s := newTestSet()
	counts := s.Load()
	assert.Equal(t, 5, counts[model.KindBroker])
	assert.Equal(t, 3, counts[model.KindExchange])
	assert.Equal(t, 2, counts[model.KindCompany])

	got, err := s.Suggest(model.KindExchange, "bombay stock exchange")
	require.NoError(t, err)
	assert.Equal(t, []string{"BSE Limited"}, got)

	got, err = s.Suggest(model.KindAdviser, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Suggest(model.EntityKind("planet"), "x")
	assert.Error(t, err)
}

func TestSet_DetectBrokerAndExchange(t *testing.T) {
	s := newTestSet()
	s.Load()
	b, e := s.DetectBrokerAndExchange("My broker HDFC Securities delayed my order on NSE")
	assert.Equal(t, "HDFC Securities Limited", b)
	assert.Equal(t, "National Stock Exchange of India Limited", e)

	b, e = s.DetectBrokerAndExchange("something went wrong with my account")
	assert.Empty(t, b)
	assert.Empty(t, e)
}

func TestSet_Seed(t *testing.T) {
	s := newTestSet()
	s.Load()
	assert.Equal(t, "Tata Motors Limited", s.Seed(model.KindCompany, "tata motors did not pay my dividend"))
	assert.Equal(t, "SBI Mutual Fund", s.Seed(model.KindMutualFund, "sbi mf redemption delayed"))
}

func TestSet_ReloadSwapsUnderReaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brokers.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nAlpha Broking\n"), 0o600))

	s := NewSet(map[model.EntityKind]Source{model.KindBroker: FileSource(path)})
	assert.Equal(t, 1, s.Load()[model.KindBroker])
	assert.Equal(t, 0, s.Get(model.KindCompany).Len())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = s.Get(model.KindBroker).Suggest("alpha")
				}
			}
		}()
	}

	require.NoError(t, os.WriteFile(path, []byte("name\nAlpha Broking\nBeta Broking\n"), 0o600))
	assert.Equal(t, 2, s.Reload()[model.KindBroker])
	close(stop)
	wg.Wait()

	assert.True(t, s.Get(model.KindBroker).IsRegistered("beta broking"))
}

func TestFileSources(t *testing.T) {
	src := FileSources(model.RegistryConfig{Brokers: filepath.Join(t.TempDir(), "b.csv")})
	assert.Len(t, src, 5)
	rows, err := src[model.KindBroker](DefaultProfile(model.KindBroker))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
