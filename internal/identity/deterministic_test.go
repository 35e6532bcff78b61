package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := UUID("go-kb:article:fire-safety")
	second := UUID("  go-kb:article:fire-safety ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected trimmed keys to match: %s != %s", first, second)
	}
	if UUID("") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
}

func TestArticleUUIDNormalisesSlug(t *testing.T) {
	if ArticleUUID("Fire-Safety") != ArticleUUID(" fire-safety ") {
		t.Fatal("expected slug case and whitespace to be ignored")
	}
	if ArticleUUID("fire-safety") == ArticleUUID("water-storage") {
		t.Fatal("expected distinct slugs to yield distinct ids")
	}
	if ArticleUUID("   ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank slug")
	}
}
