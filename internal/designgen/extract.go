package designgen

import (
	"encoding/json"
	"strings"
)

// The generation service does not guarantee a stable response shape:
// depending on the model and gateway, the output image has been observed
// under nested choice content, a top-level data array, and a flat
// image_url field. Each known location is a named extraction strategy;
// they are probed in order and the first match wins.

type generationResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
			Images  []struct {
				ImageURL imageRef `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	ImageURL string `json:"image_url"`
	Error    *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type extractor struct {
	name string
	fn   func(generationResponse) (string, bool)
}

var extractors = []extractor{
	{"choice_images", extractChoiceImages},
	{"choice_content", extractChoiceContent},
	{"data_url", extractDataURL},
	{"data_b64", extractDataB64},
	{"flat_image_url", extractFlatImageURL},
}

// ExtractImageURL probes the known response locations in order and
// returns the first image URL found along with the strategy that
// matched.
func ExtractImageURL(resp generationResponse) (url, strategy string, ok bool) {
	for _, e := range extractors {
		if u, found := e.fn(resp); found {
			return u, e.name, true
		}
	}
	return "", "", false
}

func extractChoiceImages(resp generationResponse) (string, bool) {
	for _, choice := range resp.Choices {
		for _, img := range choice.Message.Images {
			if u := strings.TrimSpace(img.ImageURL.URL); u != "" {
				return u, true
			}
		}
	}
	return "", false
}

// extractChoiceContent handles message content carried as an array of
// typed parts: {"image_url": {"url": ...}} and the bare {"image": ...}
// variant some gateways emit.
func extractChoiceContent(resp generationResponse) (string, bool) {
	type part struct {
		Type     string    `json:"type"`
		Image    string    `json:"image"`
		ImageURL *imageRef `json:"image_url"`
	}
	for _, choice := range resp.Choices {
		raw := choice.Message.Content
		if len(raw) == 0 {
			continue
		}
		var parts []part
		if err := json.Unmarshal(raw, &parts); err != nil {
			// Content may also be a plain string; nothing to extract then.
			continue
		}
		for _, p := range parts {
			if p.ImageURL != nil {
				if u := strings.TrimSpace(p.ImageURL.URL); u != "" {
					return u, true
				}
			}
			if u := strings.TrimSpace(p.Image); u != "" {
				return u, true
			}
		}
	}
	return "", false
}

func extractDataURL(resp generationResponse) (string, bool) {
	for _, d := range resp.Data {
		if u := strings.TrimSpace(d.URL); u != "" {
			return u, true
		}
	}
	return "", false
}

func extractDataB64(resp generationResponse) (string, bool) {
	for _, d := range resp.Data {
		if b64 := strings.TrimSpace(d.B64JSON); b64 != "" {
			return "data:image/png;base64," + b64, true
		}
	}
	return "", false
}

func extractFlatImageURL(resp generationResponse) (string, bool) {
	if u := strings.TrimSpace(resp.ImageURL); u != "" {
		return u, true
	}
	return "", false
}
