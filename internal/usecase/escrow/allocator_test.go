package escrow

import (
	"context"
	"errors"
	"strings"
	"testing"

	escrowDomain "nftlend-backend/internal/domain/escrow"
	loanDomain "nftlend-backend/internal/domain/loan"
	"nftlend-backend/internal/testutil/escrowmock"

	"gorm.io/gorm"
)

func TestAllocate_ReturnsWallet(t *testing.T) {
	want := &escrowDomain.Wallet{ID: 7, Address: "0xescrow", Chain: "ethereum", IsActive: true}
	repo := &escrowmock.Repo{
		FindActiveByChainFn: func(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
			if chain != "ethereum" {
				t.Fatalf("chain = %s", chain)
			}
			return want, nil
		},
	}

	got, err := NewAllocator(repo).Allocate(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != want {
		t.Fatalf("wallet = %+v", got)
	}
}

func TestAllocate_NoCapacityMapsToNotFound(t *testing.T) {
	repo := &escrowmock.Repo{
		FindActiveByChainFn: func(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	_, err := NewAllocator(repo).Allocate(context.Background(), "polygon")
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "polygon") {
		t.Fatalf("error does not name the chain: %q", err.Error())
	}
}

func TestAllocate_OtherErrorsPassThrough(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &escrowmock.Repo{
		FindActiveByChainFn: func(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
			return nil, boom
		},
	}

	_, err := NewAllocator(repo).Allocate(context.Background(), "ethereum")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want passthrough", err)
	}
	if errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatal("unrelated error wrapped as ErrNotFound")
	}
}
