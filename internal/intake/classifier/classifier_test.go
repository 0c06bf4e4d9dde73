package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

func init() { logx.Disable() }

type fakeChatModel struct {
	content string
	err     error
	usage   *schema.TokenUsage
	seen    []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.seen = in
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      f.content,
		ResponseMeta: &schema.ResponseMeta{Usage: f.usage},
	}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	m, err := f.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{m}), nil
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("(category<||>Stock Broker<||>0.93)##(subcategory<||>Order Execution Delay<||>0.71)<|COMPLETE|>")
	require.NoError(t, err)
	assert.Equal(t, CategoryBroker, v.Category)
	assert.InDelta(t, 0.93, v.CategoryConf, 1e-9)
	assert.Equal(t, "Order Execution Delay", v.SubCategory)
	assert.Empty(t, v.Errors())
	assert.Nil(t, v.ParsingMetadata["incomplete"])
}

func TestParseVerdictTolerance(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		cat     string
		sub     string
		errsMin int
	}{
		{"label canonicalized", "(category<||>stock broker<||>0.8)<|COMPLETE|>", CategoryBroker, "", 0},
		{"outside taxonomy", "(category<||>Insurance<||>0.9)##(subcategory<||>Claim<||>0.9)<|COMPLETE|>", "", "Claim", 1},
		{"bad confidence", "(category<||>Mutual Fund<||>1.7)<|COMPLETE|>", "", "", 1},
		{"missing parens", "category<||>Mutual Fund<||>0.7<|COMPLETE|>", "", "", 1},
		{"higher confidence wins", "(category<||>Mutual Fund<||>0.4)##(category<||>Listed Company<||>0.8)<|COMPLETE|>", CategoryCompany, "", 0},
		{"noise after terminator", "(category<||>Others<||>0.6)<|COMPLETE|>\nthanks!", CategoryOthers, "", 0},
		{"empty", "", "", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ParseVerdict(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.cat, v.Category)
			assert.Equal(t, tc.sub, v.SubCategory)
			assert.GreaterOrEqual(t, len(v.Errors()), tc.errsMin)
		})
	}
}

func TestParseVerdictIncomplete(t *testing.T) {
	v, err := ParseVerdict("(category<||>Stock Exchange<||>0.9)")
	require.NoError(t, err)
	assert.Equal(t, CategoryExchange, v.Category)
	assert.Equal(t, true, v.ParsingMetadata["incomplete"])
}

func TestKeywordClassifier(t *testing.T) {
	k := NewKeywordClassifier()
	ctx := context.Background()

	cases := []struct {
		text string
		cat  string
		sub  string
	}{
		{"My broker HDFC Securities delayed my order on NSE", CategoryBroker, "Order Execution Delay"},
		{"dividend for last year was never paid by the company", CategoryCompany, "Dividend Not Received"},
		{"my mutual fund redemption has not been credited for 10 days", CategoryMutualFund, "Redemption Delay"},
		{"the investment adviser promised guaranteed returns and I made a loss", CategoryAdviser, "Misleading Advice"},
		{"shares moved out of my demat account through an off market transfer", CategoryDepository, "Unauthorized Transfer"},
		{"my brokar did not give payout", CategoryBroker, "Funds Not Received"},
		{"I want to raise a complaint about fraud", CategoryOthers, generalSubCategory},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got := k.Classify(ctx, tc.text)
			assert.Equal(t, tc.cat, got.Category)
			assert.Equal(t, tc.sub, got.SubCategory)
		})
	}

	assert.True(t, k.Classify(ctx, "the weather is lovely today").Empty())
	assert.True(t, k.Classify(ctx, "   ").Empty())
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	empty := Func(func(context.Context, string) model.Classification { return model.Classification{} })

	got := Fallback{empty, nil, Static("Mutual Fund", "SIP Issue")}.Classify(ctx, "x")
	assert.Equal(t, model.Classification{Category: "Mutual Fund", SubCategory: "SIP Issue"}, got)
	assert.True(t, Fallback{empty}.Classify(ctx, "x").Empty())
}

func TestGeminiClassifier(t *testing.T) {
	ctx := context.Background()
	fake := &fakeChatModel{
		content: "(category<||>Stock Broker<||>0.91)##(subcategory<||>Order Execution Delay<||>0.30)<|COMPLETE|>",
		usage:   &schema.TokenUsage{PromptTokens: 400, CompletionTokens: 20, TotalTokens: 420},
	}
	g, err := NewGeminiClassifier(ctx, fake, GeminiOptions{ModelName: "gemini-2.5-flash-lite", MinConfidence: 0.5})
	require.NoError(t, err)

	got := g.Classify(ctx, "my broker did not execute my order {urgent}")
	assert.Equal(t, CategoryBroker, got.Category)
	assert.Empty(t, got.SubCategory, "below min confidence")

	require.Len(t, fake.seen, 2)
	assert.Equal(t, schema.System, fake.seen[0].Role)
	assert.Contains(t, fake.seen[0].Content, "Depository Participant")
	assert.Contains(t, fake.seen[0].Content, tupDelim)
	assert.NotContains(t, fake.seen[0].Content, "{TD}")
	assert.Equal(t, schema.User, fake.seen[1].Role)
	assert.True(t, strings.HasSuffix(fake.seen[1].Content, "{urgent}"))
}

func TestGeminiClassifierFailure(t *testing.T) {
	ctx := context.Background()
	g, err := NewGeminiClassifier(ctx, &fakeChatModel{err: errors.New("quota")}, GeminiOptions{})
	require.NoError(t, err)
	assert.True(t, g.Classify(ctx, "my broker delayed my order").Empty())
	assert.True(t, g.Classify(ctx, "").Empty())

	_, err = NewGeminiClassifier(ctx, nil, GeminiOptions{})
	assert.Error(t, err)
}

func TestNewBackends(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, model.ClassifierConfig{Backend: "keyword"})
	require.NoError(t, err)
	assert.IsType(t, &KeywordClassifier{}, c)

	_, err = New(ctx, model.ClassifierConfig{Backend: "gemini"})
	assert.Error(t, err, "missing api key")

	_, err = New(ctx, model.ClassifierConfig{Backend: "svm"})
	assert.Error(t, err)
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 500_000}, ResolvePricing("gemini-2.5-flash"))
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 1.25, out, 1e-9)
	assert.InDelta(t, 1.55, total, 1e-9)

	_, _, total = ComputeCost(nil, ResolvePricing("gemini-2.5-flash"))
	assert.Zero(t, total)
	assert.Equal(t, Pricing{}, ResolvePricing("unknown"))
}
