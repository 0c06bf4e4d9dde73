package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultMinConfidence = 0.45
	// long narratives are cut before they reach the model
	maxComplaintChars = 4000
)

// NewGeminiChatModel creates the Gemini chat model behind the classifier.
func NewGeminiChatModel(ctx context.Context, cfg model.ClassifierConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}
	return cm, nil
}

type GeminiOptions struct {
	ModelName     string
	MinConfidence float64
	Timeout       time.Duration
	// Callbacks defaults to NewCallbacks().
	Callbacks einocb.Handler
}

// GeminiClassifier runs prompt -> chat model -> tuple parser as one eino chain.
type GeminiClassifier struct {
	runnable  compose.Runnable[map[string]any, *Verdict]
	system    string
	modelName string
	minConf   float64
	timeout   time.Duration
	handler   einocb.Handler
}

// NewGeminiClassifier compiles the chain around any chat model, which lets
// tests substitute a fake.
func NewGeminiClassifier(ctx context.Context, cm einomodel.BaseChatModel, opts GeminiOptions) (*GeminiClassifier, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	g := &GeminiClassifier{
		system:    renderSystemPrompt(),
		modelName: opts.ModelName,
		minConf:   opts.MinConfidence,
		timeout:   opts.Timeout,
		handler:   opts.Callbacks,
	}
	if g.minConf <= 0 {
		g.minConf = defaultMinConfidence
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	if g.handler == nil {
		g.handler = NewCallbacks()
	}

	chain := compose.NewChain[map[string]any, *Verdict]().
		AppendChatTemplate(newChatTemplate()).
		AppendChatModel(cm).
		AppendLambda(compose.InvokableLambda(g.parse))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling classifier chain")
		return nil, fmt.Errorf("error compiling classifier chain: %w", err)
	}
	g.runnable = runnable
	return g, nil
}

func (g *GeminiClassifier) parse(_ context.Context, out *schema.Message) (*Verdict, error) {
	if out == nil {
		return nil, fmt.Errorf("empty model output")
	}
	logUsage(g.modelName, out)
	return ParseVerdict(out.Content)
}

// Classify never returns an error; failures come back as an empty result.
func (g *GeminiClassifier) Classify(ctx context.Context, text string) model.Classification {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Classification{}
	}
	if r := []rune(text); len(r) > maxComplaintChars {
		text = string(r[:maxComplaintChars])
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	v, err := g.runnable.Invoke(ctx, templateVars(g.system, text), compose.WithCallbacks(g.handler))
	if err != nil {
		logx.Warn().Err(err).Str("backend", BackendGemini).Msg("Classifier call failed")
		return model.Classification{}
	}
	if errs := v.Errors(); len(errs) > 0 {
		logx.Debug().Strs("parsing_errors", errs).Msg("Classifier output had bad records")
	}
	return g.filter(v)
}

func (g *GeminiClassifier) filter(v *Verdict) model.Classification {
	var out model.Classification
	if v == nil {
		return out
	}
	if v.Category != "" && v.CategoryConf >= g.minConf {
		out.Category = v.Category
	}
	if v.SubCategory != "" && v.SubCategoryConf >= g.minConf {
		out.SubCategory = v.SubCategory
	}
	return out
}
