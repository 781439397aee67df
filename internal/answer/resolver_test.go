package answer

import (
	"context"
	"errors"
	"github.com/apomuden/apomuden/internal/kb"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/apomuden/apomuden/internal/search"
	"github.com/apomuden/apomuden/internal/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

type fakeExtractor struct {
	text    string
	conf    float64
	err     error
	panics  bool
	passage string
	calls   int
}

func (f *fakeExtractor) Extract(ctx context.Context, question, passage string) (string, float64, error) {
	f.calls++
	f.passage = passage
	if f.panics {
		panic("extractor exploded")
	}
	return f.text, f.conf, f.err
}

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
	block   bool
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.results, f.err
}

type fakeTranslator struct {
	err error
}

func (f fakeTranslator) Translate(ctx context.Context, text string, target lang.Code) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "[" + string(target) + "] " + text, nil
}

type panickingSearcher struct{}

func (panickingSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	panic("search exploded")
}

var fixed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newResolver() *Resolver {
	return &Resolver{
		Triage: triage.Default(),
		KB:     kb.Default(),
		now:    func() time.Time { return fixed },
	}
}

func TestResolveEmptyQuestion(t *testing.T) {
	ex := &fakeExtractor{}
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "m", Extractor: ex}

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := r.Resolve(context.Background(), Question{Text: q})
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
	assert.Equal(t, 0, ex.calls)
}

func TestResolveEmergencyWins(t *testing.T) {
	ex := &fakeExtractor{text: "a long enough answer", conf: 0.9}
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "BioBERT", Extractor: ex, Floor: DefaultFloor}

	res, err := r.Resolve(context.Background(), Question{Text: "I have chest pain and malaria"})
	require.NoError(t, err)
	assert.True(t, res.IsEmergency)
	assert.False(t, res.IsError)
	assert.Equal(t, SourceEmergency, res.Source)
	assert.Equal(t, 1.0, res.ConfidenceValue())
	assert.Equal(t, lang.English, res.Language)
	assert.Equal(t, fixed, res.Timestamp)
	assert.Equal(t, 0, ex.calls)
}

func TestResolveEmergencyInAkan(t *testing.T) {
	res, err := newResolver().Resolve(context.Background(), Question{Text: "chest pain", Language: "ak"})
	require.NoError(t, err)
	assert.Equal(t, lang.Akan, res.Language)
	assert.Contains(t, res.Answer, "NTƐM YI")
}

func TestResolveModel(t *testing.T) {
	ex := &fakeExtractor{text: " caused by parasites spread through mosquito bites ", conf: 0.8}
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "BioBERT", Extractor: ex, Floor: DefaultFloor}

	res, err := r.Resolve(context.Background(), Question{Text: "What causes malaria?"})
	require.NoError(t, err)
	assert.Equal(t, "BioBERT", res.Source)
	assert.Equal(t, "caused by parasites spread through mosquito bites", res.Answer)
	assert.Equal(t, 0.8, res.ConfidenceValue())
	assert.True(t, strings.HasPrefix(ex.passage, "Malaria is caused by parasites"))
}

func TestResolveModelUsesCallerContext(t *testing.T) {
	ex := &fakeExtractor{text: "drink plenty of water", conf: 0.5}
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "m", Extractor: ex, Floor: DefaultFloor}

	_, err := r.Resolve(context.Background(), Question{Text: "What helps?", Context: "Drink plenty of water daily."})
	require.NoError(t, err)
	assert.Equal(t, "Drink plenty of water daily.", ex.passage)

	_, err = r.Resolve(context.Background(), Question{Text: "What helps zzz?"})
	require.NoError(t, err)
	assert.Equal(t, "What helps zzz?", ex.passage)
}

func TestResolveModelTranslatedToAkan(t *testing.T) {
	ex := &fakeExtractor{text: "see a doctor soon", conf: 0.9}
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "m", Extractor: ex, Floor: DefaultFloor}
	r.Translator = fakeTranslator{}

	res, err := r.Resolve(context.Background(), Question{Text: "malaria", Language: "ak"})
	require.NoError(t, err)
	assert.Equal(t, "[ak] see a doctor soon", res.Answer)

	r.Translator = fakeTranslator{err: errors.New("offline")}
	res, err = r.Resolve(context.Background(), Question{Text: "malaria", Language: "ak"})
	require.NoError(t, err)
	assert.Equal(t, "see a doctor soon", res.Answer)
}

func TestResolveFallsToKnowledgeBase(t *testing.T) {
	tests := []struct {
		name string
		ex   *fakeExtractor
	}{
		{"model error", &fakeExtractor{err: errors.New("timeout")}},
		{"below floor", &fakeExtractor{text: "a long enough answer", conf: 0.29}},
		{"too short", &fakeExtractor{text: "mosquito bites", conf: 0.9}},
		{"empty", &fakeExtractor{text: "   ", conf: 0.9}},
		{"panic", &fakeExtractor{panics: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newResolver()
			r.Model = &ModelAnswerer{Name: "m", Extractor: tc.ex, Floor: DefaultFloor}
			res, err := r.Resolve(context.Background(), Question{Text: "What are the symptoms of malaria?"})
			require.NoError(t, err)
			assert.Equal(t, SourceKnowledgeBase, res.Source)
			assert.Equal(t, 0.7, res.ConfidenceValue())
			assert.False(t, res.IsError)
			assert.True(t, strings.HasPrefix(res.Answer, "Malaria is caused by parasites"))
			assert.Equal(t, 1, tc.ex.calls)
		})
	}
}

func TestResolveFloorIsInclusive(t *testing.T) {
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "m", Extractor: &fakeExtractor{text: "one two three", conf: 0.3}, Floor: DefaultFloor}
	res, err := r.Resolve(context.Background(), Question{Text: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "m", res.Source)
}

func TestResolveZeroConfidenceModelIsNotUsed(t *testing.T) {
	r := newResolver()
	r.Model = &ModelAnswerer{Name: "m", Extractor: &fakeExtractor{text: "one two three", conf: 0}}
	res, err := r.Resolve(context.Background(), Question{Text: "anything"})
	require.NoError(t, err)
	assert.Equal(t, SourceSystem, res.Source)
}

func TestResolveKnowledgeBaseAkan(t *testing.T) {
	res, err := newResolver().Resolve(context.Background(), Question{Text: "malaria", Language: "ak"})
	require.NoError(t, err)
	assert.Equal(t, SourceKnowledgeBase, res.Source)
	assert.True(t, strings.HasPrefix(res.Answer, "Atiridii"))
}

func TestResolveWebSearch(t *testing.T) {
	s := &fakeSearcher{results: []search.Result{
		{Snippet: "  ", Source: "cdc.gov"},
		{Snippet: "Vaccines train the  immune system.[2]", Source: "who.int"},
	}}
	r := newResolver()
	r.Search = s

	res, err := r.Resolve(context.Background(), Question{Text: "Is the flu vaccine safe?"})
	require.NoError(t, err)
	assert.Equal(t, "who.int", res.Source)
	assert.Equal(t, 0.6, res.ConfidenceValue())
	assert.Equal(t, "According to who.int: Vaccines train the immune system.", res.Answer)
}

func TestResolveWebSearchNotReachedOnKnowledgeMatch(t *testing.T) {
	s := &fakeSearcher{results: []search.Result{{Snippet: "x", Source: "who.int"}}}
	r := newResolver()
	r.Search = s
	_, err := r.Resolve(context.Background(), Question{Text: "fever"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.calls)
}

func TestResolveGenericFallback(t *testing.T) {
	tests := []struct {
		name   string
		search Searcher
	}{
		{"search disabled", nil},
		{"search failed", &fakeSearcher{err: errors.New("down")}},
		{"no results", &fakeSearcher{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newResolver()
			r.Model = &ModelAnswerer{Name: "m", Extractor: &fakeExtractor{err: errors.New("down")}, Floor: DefaultFloor}
			r.Search = tc.search

			res, err := r.Resolve(context.Background(), Question{Text: "Is the flu vaccine safe?"})
			require.NoError(t, err)
			assert.Equal(t, Fallback(lang.English), res.Answer)
			assert.Equal(t, 0.1, res.ConfidenceValue())
			assert.Equal(t, SourceSystem, res.Source)
			assert.False(t, res.IsError)
		})
	}
}

func TestResolvePanicBecomesApology(t *testing.T) {
	r := newResolver()
	r.Search = panickingSearcher{}

	res, err := r.Resolve(context.Background(), Question{Text: "Is the flu vaccine safe?", Language: "ak"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, 0.0, res.ConfidenceValue())
	require.NotNil(t, res.Confidence)
	assert.Equal(t, SourceSystem, res.Source)
	assert.Equal(t, Apology(lang.Akan), res.Answer)
	assert.Equal(t, lang.Akan, res.Language)
}

func TestResolveCancelled(t *testing.T) {
	r := newResolver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, Question{Text: "fever"})
	assert.ErrorIs(t, err, context.Canceled)

	s := &fakeSearcher{block: true}
	r.Search = s
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Resolve(ctx, Question{Text: "Is the flu vaccine safe?"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, s.calls)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newResolver()
	for _, q := range []string{"What are the symptoms of malaria?", "chest pain", "Is the flu vaccine safe?"} {
		a, err := r.Resolve(context.Background(), Question{Text: q})
		require.NoError(t, err)
		b, err := r.Resolve(context.Background(), Question{Text: q})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestResolveUnknownHintIsEnglish(t *testing.T) {
	res, err := newResolver().Resolve(context.Background(), Question{Text: "malaria", Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, lang.English, res.Language)
	assert.True(t, strings.HasPrefix(res.Answer, "Malaria is caused"))
}

func TestResolveDetectsAkan(t *testing.T) {
	res, err := newResolver().Resolve(context.Background(), Question{Text: "wo ho yare wo mu", Language: "auto"})
	require.NoError(t, err)
	assert.Equal(t, lang.Akan, res.Language)
}

func TestCheckEmergency(t *testing.T) {
	r := newResolver()
	res, ok := r.CheckEmergency("my friend passed out", "")
	require.True(t, ok)
	assert.True(t, res.IsEmergency)
	assert.Equal(t, 1.0, res.ConfidenceValue())

	_, ok = r.CheckEmergency("mild cough", "en")
	assert.False(t, ok)

	_, ok = (&Resolver{}).CheckEmergency("chest pain", "en")
	assert.False(t, ok)
}

func TestStatisticsCounts(t *testing.T) {
	before := Counts()[SourceEmergency]
	_, err := newResolver().Resolve(context.Background(), Question{Text: "chest pain"})
	require.NoError(t, err)
	assert.Equal(t, before+1, Counts()[SourceEmergency])
	Statistics()
}
