package nota_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/nota-dashboard/pkg/nota"
)

func TestOptimistic(t *testing.T) {
	value := "old"
	o := nota.Optimistic[string]{
		Load:  func() string { return value },
		Store: func(v string) { value = v },
	}

	var seen string
	err := o.Do(context.Background(), "new", func(ctx context.Context, next string) error {
		seen = value
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "new", seen, "tentative value is visible during the commit")
	assert.Equal(t, "new", value)

	boom := errors.New("boom")
	err = o.Do(context.Background(), "newer", func(ctx context.Context, next string) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "new", value)
}
