package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/samvad-hq/waplatform-go/pkg/waapi"
)

const pngDataPrefix = "data:image/png;base64,"

func runSessionQR(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
	res, err := e.client.Sessions.QRCode(ctx, e.args[0])
	if err != nil {
		return nil, err
	}
	code := qrFromResult(res)
	if code == "" {
		// Nothing to render yet; show what the platform said.
		return res, nil
	}
	if err := renderQR(e.stdout, code, e.opts.pngPath, e.args[0]); err != nil {
		return nil, err
	}
	return nil, nil
}

// qrFromResult reads data.qrCode, falling back to data.qr.
func qrFromResult(res waapi.Result) string {
	data := res.Data()
	for _, key := range []string{"qrCode", "qr"} {
		if s, ok := data[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// renderQR prints code to w as terminal blocks, or writes a PNG when pngPath
// is set. A code that is already a PNG data URL is decoded and saved as-is.
func renderQR(w io.Writer, code, pngPath, sessionID string) error {
	if strings.HasPrefix(code, pngDataPrefix) {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(code, pngDataPrefix))
		if err != nil {
			return fmt.Errorf("decode qr image: %w", err)
		}
		if pngPath == "" {
			pngPath = qrFileName(sessionID)
		}
		if err := os.WriteFile(pngPath, raw, 0o644); err != nil {
			return fmt.Errorf("write qr image: %w", err)
		}
		_, err = fmt.Fprintf(w, "QR code written to %s\n", pngPath)
		return err
	}
	if strings.HasPrefix(code, "data:") {
		return errors.New("unsupported qr data url format")
	}

	if pngPath != "" {
		if err := qrcode.WriteFile(code, qrcode.Medium, 256, pngPath); err != nil {
			return fmt.Errorf("write qr image: %w", err)
		}
		_, err := fmt.Fprintf(w, "QR code written to %s\n", pngPath)
		return err
	}

	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	_, err = fmt.Fprint(w, q.ToSmallString(false))
	return err
}

// qrFileName builds a file name in the working directory. Anything outside
// [A-Za-z0-9_-] in the session id becomes '_', so ids cannot name a path.
func qrFileName(sessionID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, sessionID)
	if strings.Trim(safe, "_") == "" {
		safe = "unknown"
	}
	return "session-" + safe + "-qr.png"
}
