package variant

import (
	"testing"

	"github.com/zhouzirui/chatbox/backend/internal/format"
)

func TestSeedVariants(t *testing.T) {
	store := NewMemoryStore(Seed())

	chatbox, ok := store.FindByID("chatbox")
	if !ok {
		t.Fatal("expected chatbox variant")
	}
	if chatbox.Format != format.ModeWrap || chatbox.WrapWidth != 20 || chatbox.Sentiment {
		t.Fatalf("unexpected chatbox variant: %+v", chatbox)
	}

	article, ok := store.FindByID("articlemaster")
	if !ok || article.Format != format.ModeSections || !article.Artifact {
		t.Fatalf("unexpected articlemaster variant: %+v", article)
	}

	senti, ok := store.FindByID("sentiment")
	if !ok || !senti.Sentiment {
		t.Fatalf("unexpected sentiment variant: %+v", senti)
	}
}

func TestStoreListIsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	list := store.List()
	list[0].ID = "mutated"

	if _, ok := store.FindByID("mutated"); ok {
		t.Fatal("List must not expose internal slice")
	}
	if _, ok := store.FindByID("missing"); ok {
		t.Fatal("expected missing variant lookup to fail")
	}
}
