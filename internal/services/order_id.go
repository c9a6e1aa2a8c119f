package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const maxOrderIDAttempts = 10

var ErrOrderIDExhausted = errors.New("could not allocate a unique order id")

// OrderIDGenerator produces ORD-YYYYMMDD-NNNNNN identifiers and retries until
// exists reports the candidate unused.
type OrderIDGenerator struct {
	now         func() time.Time
	random      func(max int64) (int64, error)
	maxAttempts int
}

func NewOrderIDGenerator() *OrderIDGenerator {
	return &OrderIDGenerator{now: time.Now, random: cryptoRandom, maxAttempts: maxOrderIDAttempts}
}

func cryptoRandom(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

func (g *OrderIDGenerator) candidate() (string, error) {
	n, err := g.random(1_000_000)
	if err != nil {
		return "", fmt.Errorf("random order suffix: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%06d", g.now().Format("20060102"), n), nil
}

func (g *OrderIDGenerator) Next(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		id, err := g.candidate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check order id %s: %w", id, err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrOrderIDExhausted
}

// NewPaymentID renders PAY-<base36 millis>-<4 digits>.
func NewPaymentID(now time.Time) (string, error) {
	n, err := cryptoRandom(10_000)
	if err != nil {
		return "", fmt.Errorf("random payment suffix: %w", err)
	}
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return fmt.Sprintf("PAY-%s-%04d", ts, n), nil
}
