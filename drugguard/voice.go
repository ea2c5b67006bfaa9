package drugguard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

const (
	RecognizeEndpoint      = "/voice/recognize"
	SpeakEndpoint          = "/voice/speak"
	DetectLanguageEndpoint = "/voice/detect-language"
	LanguagesEndpoint      = "/voice/languages"
	VoiceMessageEndpoint   = "/voice/message"
	PhrasesEndpoint        = "/voice/phrases"
	VoiceHealthEndpoint    = "/voice/health"
)

// RecognizeVoice uploads recorded audio for transcription as a multipart
// form with "audio" and "language" fields.
func (c *Client) RecognizeVoice(ctx context.Context, audio io.Reader, filename, language string) (*VoiceRecognitionResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return nil, &RequestError{Method: http.MethodPost, Path: RecognizeEndpoint, Err: err}
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, &RequestError{Method: http.MethodPost, Path: RecognizeEndpoint, Err: fmt.Errorf("reading audio: %w", err)}
	}
	if err := mw.WriteField("language", orDefaultLanguage(language)); err != nil {
		return nil, &RequestError{Method: http.MethodPost, Path: RecognizeEndpoint, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &RequestError{Method: http.MethodPost, Path: RecognizeEndpoint, Err: err}
	}

	var resp VoiceRecognitionResult
	r := request{
		method:      http.MethodPost,
		endpoint:    RecognizeEndpoint,
		rawBody:     &buf,
		contentType: mw.FormDataContentType(),
	}
	if err := c.makeRequest(ctx, r, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

type speakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TextToSpeech returns synthesized audio for text.
func (c *Client) TextToSpeech(ctx context.Context, text, language string) (*Raw, error) {
	r := request{
		method:   http.MethodPost,
		endpoint: SpeakEndpoint,
		body:     speakRequest{Text: text, Language: orDefaultLanguage(language)},
		accept:   "audio/*",
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}

	return &Raw{ContentType: resp.header.Get("Content-Type"), Data: resp.body}, nil
}

// DetectLanguage asks the server which supported language text is in.
func (c *Client) DetectLanguage(ctx context.Context, text string) (string, error) {
	var resp struct {
		Language string `json:"language"`
	}
	body := map[string]string{"text": text}
	if err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: DetectLanguageEndpoint, body: body}, &resp); err != nil {
		return "", err
	}

	return resp.Language, nil
}

func (c *Client) AvailableLanguages(ctx context.Context) ([]LanguageInfo, error) {
	return getList[LanguageInfo](ctx, c, LanguagesEndpoint, nil)
}

// VoiceMessage fetches a localized prompt of the given type. args fill the
// message template in order.
func (c *Client) VoiceMessage(ctx context.Context, language, messageType string, args ...string) (string, error) {
	query := url.Values{
		"language": {orDefaultLanguage(language)},
		"type":     {messageType},
	}
	for _, a := range args {
		query.Add("args", a)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: VoiceMessageEndpoint, query: query}, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

func (c *Client) DrugPhrases(ctx context.Context, language string) ([]string, error) {
	query := url.Values{"language": {orDefaultLanguage(language)}}
	return getList[string](ctx, c, PhrasesEndpoint, query)
}

func (c *Client) VoiceHealth(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: VoiceHealthEndpoint}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
