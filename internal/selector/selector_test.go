package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

type fakeCompleter struct {
	response string
	err      error
	called   bool
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, _ float32) (string, error) {
	f.called = true
	return f.response, f.err
}

var testListings = []domain.Listing{
	{Title: "Racket A", Price: 90, URL: "https://x/a", Rating: 4.8},
	{Title: "Racket B", Price: 85, URL: "https://x/b", Rating: 4.2},
}

func TestChooseParsesObject(t *testing.T) {
	fake := &fakeCompleter{response: `{
		"product_title": "Racket A",
		"product_price": "90.00",
		"product_url": "https://x/a",
		"product_photo": "https://x/a.jpg"
	}`}
	s := New(fake, logger.NewNop())

	chosen, ok := s.Choose(context.Background(), "something sturdy", testListings)
	require.True(t, ok)
	assert.Equal(t, "Racket A", chosen.Title)
	assert.Equal(t, 90.00, chosen.Price)
	assert.Equal(t, "https://x/a.jpg", chosen.Image)
}

func TestChooseNormalizesArrayToFirstElement(t *testing.T) {
	fake := &fakeCompleter{response: `[{"product_title":"Racket B","product_price":85,"product_url":"https://x/b","product_photo":""}]`}
	s := New(fake, logger.NewNop())

	chosen, ok := s.Choose(context.Background(), "cheap", testListings)
	require.True(t, ok)
	assert.Equal(t, "Racket B", chosen.Title)
	assert.Equal(t, 85.00, chosen.Price)
}

func TestChooseEmptyArrayIsAbsent(t *testing.T) {
	fake := &fakeCompleter{response: `[]`}
	s := New(fake, logger.NewNop())

	_, ok := s.Choose(context.Background(), "anything", testListings)
	assert.False(t, ok)
}

func TestChooseProseIsAbsent(t *testing.T) {
	fake := &fakeCompleter{response: "I would recommend the first racket because it has the best rating."}
	s := New(fake, logger.NewNop())

	_, ok := s.Choose(context.Background(), "anything", testListings)
	assert.False(t, ok)
}

func TestChooseTransportFailureIsAbsent(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("timeout")}
	s := New(fake, logger.NewNop())

	_, ok := s.Choose(context.Background(), "anything", testListings)
	assert.False(t, ok)
}

func TestChooseSkipsModelForEmptyInput(t *testing.T) {
	fake := &fakeCompleter{}
	s := New(fake, logger.NewNop())

	_, ok := s.Choose(context.Background(), "anything", nil)
	assert.False(t, ok)
	assert.False(t, fake.called)
}
