package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	googleTTSRPC      = "jQ1olc"
	googleTTSMaxChars = 100
)

// ErrNoAudio is returned when the TTS service answers without an audio payload.
var ErrNoAudio = errors.New("no audio in tts response")

var googleAudioRe = regexp.MustCompile(`jQ1olc","\[\\"(.*)\\"]`)

// GoogleTTS speaks text through Google Translate's batchexecute TTS RPC, the
// same service the gTTS library talks to. Long text is split into chunks of at
// most 100 characters and the MP3 payloads are concatenated.
type GoogleTTS struct {
	lang       string
	slow       bool
	endpoint   string
	httpClient *http.Client
}

// NewGoogleTTS creates a client for the given language code and Google
// Translate top-level domain ("com", "com.co", ...).
func NewGoogleTTS(lang, tld string, slow bool) *GoogleTTS {
	if tld == "" {
		tld = "com"
	}
	return &GoogleTTS{
		lang:       lang,
		slow:       slow,
		endpoint:   fmt.Sprintf("https://translate.google.%s/_/TranslateFrontendUi/data/batchexecute", tld),
		httpClient: &http.Client{},
	}
}

// Synthesize implements Synthesizer.
func (g *GoogleTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := chunkText(text, googleTTSMaxChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text to speak")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		audio, err := g.synthesizeChunk(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.Write(audio)
	}
	return out.Bytes(), nil
}

func (g *GoogleTTS) synthesizeChunk(ctx context.Context, text string) ([]byte, error) {
	body, err := g.packageRPC(text)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	req.Header.Set("Referer", "http://translate.google.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts API error %d: %s", resp.StatusCode, string(respBody))
	}

	return extractAudio(resp.Body)
}

// packageRPC builds the form body: f.req=[[["jQ1olc","[text,lang,speed,\"null\"]",null,"generic"]]]
func (g *GoogleTTS) packageRPC(text string) (string, error) {
	var speed any
	if g.slow {
		speed = true
	}
	param, err := json.Marshal([]any{text, g.lang, speed, "null"})
	if err != nil {
		return "", fmt.Errorf("encoding rpc parameter: %w", err)
	}
	rpc, err := json.Marshal([][][]any{{{googleTTSRPC, string(param), nil, "generic"}}})
	if err != nil {
		return "", fmt.Errorf("encoding rpc: %w", err)
	}
	return url.Values{"f.req": {string(rpc)}}.Encode(), nil
}

func extractAudio(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, googleTTSRPC) {
			continue
		}
		m := googleAudioRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		audio, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			return nil, fmt.Errorf("decoding audio: %w", err)
		}
		return audio, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return nil, ErrNoAudio
}

var clauseEnd = regexp.MustCompile(`[.,;:!?…]+(\s+|$)`)

// chunkText splits text into pieces of at most limit runes. Clauses ending in
// punctuation are kept whole and packed together while they fit; a clause
// longer than limit is split on whitespace, and a word longer than limit is
// cut. Pieces without any letter or digit are dropped since the service
// refuses to speak them.
func chunkText(text string, limit int) []string {
	var (
		chunks []string
		cur    string
	)
	flush := func() {
		if speakable(cur) {
			chunks = append(chunks, cur)
		}
		cur = ""
	}

	for _, clause := range splitClauses(text) {
		n := utf8.RuneCountInString(clause)
		if n > limit {
			flush()
			chunks = append(chunks, splitWords(clause, limit)...)
			continue
		}
		if cur != "" && utf8.RuneCountInString(cur)+1+n > limit {
			flush()
		}
		if cur != "" {
			cur += " "
		}
		cur += clause
	}
	flush()
	return chunks
}

// splitClauses cuts text after punctuation followed by whitespace (or the
// end), so "3.5" and "1,000" stay intact. Whitespace is collapsed.
func splitClauses(text string) []string {
	var (
		out  []string
		prev int
	)
	add := func(s string) {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			out = append(out, s)
		}
	}
	for _, loc := range clauseEnd.FindAllStringIndex(text, -1) {
		add(text[prev:loc[1]])
		prev = loc[1]
	}
	add(text[prev:])
	return out
}

func splitWords(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if s := cur.String(); speakable(s) {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			runes := []rune(word)
			flush()
			cur.WriteString(string(runes[:limit]))
			flush()
			word = string(runes[limit:])
		}
		n := utf8.RuneCountInString(cur.String())
		if n > 0 && n+1+utf8.RuneCountInString(word) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	flush()
	return chunks
}

func speakable(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
