package drama

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return v
}

func TestNormalizeListEnvelope(t *testing.T) {
	shapes := map[string]string{
		"bare array": `[{"bookId":"1"},{"bookId":"2"}]`,
		"data":       `{"data":[{"bookId":"1"},{"bookId":"2"}]}`,
		"list":       `{"list":[{"bookId":"1"},{"bookId":"2"}]}`,
		"items":      `{"items":[{"bookId":"1"},{"bookId":"2"}]}`,
	}
	for name, raw := range shapes {
		items := NormalizeListEnvelope(decode(t, raw))
		if len(items) != 2 {
			t.Errorf("%s: got %d items, want 2", name, len(items))
		}
	}
}

func TestNormalizeListEnvelopePrecedence(t *testing.T) {
	// data wins over list when both are present.
	raw := decode(t, `{"list":[{"bookId":"wrong"}],"data":[{"bookId":"right"}]}`)
	items := NormalizeListEnvelope(raw)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if id := asString(asMap(items[0])["bookId"]); id != "right" {
		t.Errorf("data key should win, got item %q", id)
	}
}

func TestNormalizeListEnvelopeUnknown(t *testing.T) {
	for _, raw := range []string{`{"payload":[1,2]}`, `"just a string"`, `42`, `null`, `{}`} {
		if items := NormalizeListEnvelope(decode(t, raw)); len(items) != 0 {
			t.Errorf("%s: expected empty, got %d items", raw, len(items))
		}
	}
}

func TestNormalizeCardFieldFallbacks(t *testing.T) {
	card := NormalizeCard(decode(t, `{
		"bookId": "b1",
		"bookName": "Revenge of the CEO",
		"bookCover": "//cdn.example.com/covers/b1.jpg",
		"introduction": "He was poor. Now he is not.",
		"playCount": 1100000,
		"tags": ["Revenge", "CEO"],
		"chapterCount": 80,
		"shelfTime": "2024-11-02",
		"cornerName": "HOT"
	}`))

	if card.ID != "b1" {
		t.Errorf("id = %q", card.ID)
	}
	if card.Name != "Revenge of the CEO" {
		t.Errorf("name = %q", card.Name)
	}
	if card.CoverURL != "https://cdn.example.com/covers/b1.jpg" {
		t.Errorf("cover = %q, want protocol-relative normalized", card.CoverURL)
	}
	if card.Popularity != "1100000" {
		t.Errorf("popularity = %q", card.Popularity)
	}
	if card.EpisodeCount != 80 {
		t.Errorf("episodeCount = %d", card.EpisodeCount)
	}
	if len(card.Tags) != 2 {
		t.Errorf("tags = %v", card.Tags)
	}
	if card.CornerBadge != "HOT" {
		t.Errorf("cornerBadge = %q", card.CornerBadge)
	}
}

func TestNormalizeCardAlternateNames(t *testing.T) {
	card := NormalizeCard(decode(t, `{"id":"x9","name":"Alt","coverWap":"cdn.example.com/x9.png","episodes":12}`))
	if card.ID != "x9" || card.Name != "Alt" {
		t.Fatalf("alternate id/name fields not picked up: %+v", card)
	}
	if card.CoverURL != "https://cdn.example.com/x9.png" {
		t.Errorf("bare-host cover not absolutized: %q", card.CoverURL)
	}
	if card.EpisodeCount != 12 {
		t.Errorf("episodeCount = %d", card.EpisodeCount)
	}
}

func TestNormalizeCardRankFallback(t *testing.T) {
	card := NormalizeCard(decode(t, `{"bookId":"r1","rankVo":{"hot":"2.4M"}}`))
	if card.Popularity != "2.4M" {
		t.Errorf("popularity = %q, want nested rank value", card.Popularity)
	}
}

func TestNormalizeCardDefaults(t *testing.T) {
	card := NormalizeCard(decode(t, `{"bookId":"d1","chapterCount":-5,"tags":null}`))
	if card.EpisodeCount != 0 {
		t.Errorf("negative count should coerce to 0, got %d", card.EpisodeCount)
	}
	if card.Tags == nil {
		t.Error("tags must be an empty slice, not nil")
	}
	// Malformed input never panics, just yields a zero card.
	if got := NormalizeCard("not an object"); got.ID != "" {
		t.Errorf("malformed item produced id %q", got.ID)
	}
}

func TestNormalizeCardsDropsEmptyID(t *testing.T) {
	cards := NormalizeCards(decode(t, `{"data":[{"bookId":"a"},{"bookName":"no id"},{"bookId":"b"}]}`))
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	if cards[0].ID != "a" || cards[1].ID != "b" {
		t.Errorf("unexpected cards: %+v", cards)
	}
}

func TestNormalizeDetailScenario(t *testing.T) {
	raw := decode(t, `{"data":{"book":{
		"bookId": "123",
		"bookName": "Test",
		"chapterList": [
			{"id":"e1","unlock":true,"mp4":"http://x/a.mp4"},
			{"id":"","unlock":false}
		]
	}}}`)

	detail := NormalizeDetail(raw)
	if detail.ID != "123" {
		t.Errorf("detail id = %q, want 123", detail.ID)
	}
	if detail.Name != "Test" {
		t.Errorf("detail name = %q, want Test", detail.Name)
	}

	episodes := NormalizeEpisodes(raw)
	if len(episodes) != 1 {
		t.Fatalf("got %d episodes, want 1 (empty-id entry dropped)", len(episodes))
	}
	if episodes[0].ID != "e1" {
		t.Errorf("episode id = %q", episodes[0].ID)
	}
	if !episodes[0].Unlocked {
		t.Error("episode should be unlocked")
	}
	if episodes[0].VideoURL != "http://x/a.mp4" {
		t.Errorf("video = %q", episodes[0].VideoURL)
	}
}

func TestNormalizeDetailTopLevelBook(t *testing.T) {
	detail := NormalizeDetail(decode(t, `{"book":{"bookId":"77","bookName":"Old Shape","tagNames":["Romance"]}}`))
	if detail.ID != "77" {
		t.Errorf("id = %q", detail.ID)
	}
	if len(detail.Tags) != 1 || detail.Tags[0] != "Romance" {
		t.Errorf("tagNames fallback not used: %v", detail.Tags)
	}
}

func TestNormalizeDetailTagPrecedence(t *testing.T) {
	detail := NormalizeDetail(decode(t, `{"data":{"book":{"bookId":"t","tags":["A"],"tagNames":["B"]}}}`))
	if len(detail.Tags) != 1 || detail.Tags[0] != "A" {
		t.Errorf("primary tags field should win: %v", detail.Tags)
	}
	// Empty primary falls through to the secondary.
	detail = NormalizeDetail(decode(t, `{"data":{"book":{"bookId":"t","tags":[],"tagNames":["B"]}}}`))
	if len(detail.Tags) != 1 || detail.Tags[0] != "B" {
		t.Errorf("empty primary should fall back: %v", detail.Tags)
	}
}

func TestNormalizeDetailDefensiveLists(t *testing.T) {
	detail := NormalizeDetail(decode(t, `{"data":{"book":{"bookId":"z","performerList":"garbage","recommendList":{"not":"array"}}}}`))
	if detail.Performers == nil || len(detail.Performers) != 0 {
		t.Errorf("performers should be empty, got %v", detail.Performers)
	}
	if detail.Recommended == nil || len(detail.Recommended) != 0 {
		t.Errorf("recommended should be empty, got %v", detail.Recommended)
	}
}

func TestNormalizeEpisodesShapes(t *testing.T) {
	shapes := map[string]string{
		"bare array":     `[{"chapterId":"c1"},{"chapterId":"c2"}]`,
		"top chapters":   `{"chapterList":[{"chapterId":"c1"},{"chapterId":"c2"}]}`,
		"data wrapper":   `{"data":{"chapterList":[{"chapterId":"c1"},{"chapterId":"c2"}]}}`,
		"data bare list": `{"data":[{"chapterId":"c1"},{"chapterId":"c2"}]}`,
	}
	for name, raw := range shapes {
		eps := NormalizeEpisodes(decode(t, raw))
		if len(eps) != 2 {
			t.Errorf("%s: got %d episodes, want 2", name, len(eps))
		}
	}
}

func TestNormalizeEpisodesSynthesis(t *testing.T) {
	eps := NormalizeEpisodes(decode(t, `{"chapterList":[{"chapterId":"c1"},{"chapterId":"c2","chapterName":"Finale","chapterIndex":41}]}`))
	if len(eps) != 2 {
		t.Fatalf("got %d episodes", len(eps))
	}
	if eps[0].Name != "EP 1" {
		t.Errorf("synthesized name = %q, want EP 1", eps[0].Name)
	}
	if eps[0].IndexLabel != "001" {
		t.Errorf("synthesized label = %q, want 001", eps[0].IndexLabel)
	}
	if eps[1].Name != "Finale" {
		t.Errorf("explicit name lost: %q", eps[1].Name)
	}
	if eps[1].Index != 41 || eps[1].IndexLabel != "042" {
		t.Errorf("explicit index not honored: %d %q", eps[1].Index, eps[1].IndexLabel)
	}
}

func TestNormalizeEpisodesExplicitZeroIndex(t *testing.T) {
	eps := NormalizeEpisodes(decode(t, `{"chapterList":[
		{"chapterId":"c1","chapterIndex":3},
		{"chapterId":"c2","chapterIndex":0},
		{"chapterId":"c3"}
	]}`))
	if len(eps) != 3 {
		t.Fatalf("got %d episodes", len(eps))
	}
	if eps[1].Index != 0 {
		t.Errorf("declared zero index = %d, want 0", eps[1].Index)
	}
	if eps[2].Index != 2 {
		t.Errorf("undeclared index = %d, want payload position 2", eps[2].Index)
	}
}

func TestNormalizeEpisodesLockVariants(t *testing.T) {
	eps := NormalizeEpisodes(decode(t, `{"chapterList":[
		{"chapterId":"a","unlock":false},
		{"chapterId":"b","isCharge":1},
		{"chapterId":"c","locked":false},
		{"chapterId":"d"}
	]}`))
	want := []bool{false, false, true, true}
	for i, ep := range eps {
		if ep.Unlocked != want[i] {
			t.Errorf("episode %s unlocked = %v, want %v", ep.ID, ep.Unlocked, want[i])
		}
	}
}

func TestPlaybackSources(t *testing.T) {
	eps := NormalizeEpisodes(decode(t, `{"chapterList":[{"chapterId":"c1","videoPath":"https://v/e1.mp4","m3u8":"https://v/e1.m3u8"}]}`))
	sources, best := PlaybackSources(eps[0])
	if len(sources) != 2 {
		t.Fatalf("got %d sources", len(sources))
	}
	if sources[0].Label != "MP4" || sources[1].Label != "HLS" {
		t.Errorf("labels = %s/%s", sources[0].Label, sources[1].Label)
	}
	if best != "https://v/e1.mp4" {
		t.Errorf("best = %q, want the direct file", best)
	}
}

func TestPlaybackSourcesEmpty(t *testing.T) {
	eps := NormalizeEpisodes(decode(t, `{"chapterList":[{"chapterId":"c1","mp4":""}]}`))
	sources, best := PlaybackSources(eps[0])
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %v", sources)
	}
	if best != "" {
		t.Errorf("best = %q, want empty", best)
	}
}
