// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"os"
	"strings"
)

// FromArgs turns command-line arguments into sources. An argument naming an
// existing regular file is read as a file; one with a URL scheme is a URL;
// anything else is pasted text (a DOI or an inline BibTeX entry).
func FromArgs(ctx context.Context, args []string, maxBytes int64) ([]Source, error) {
	out := make([]Source, len(args))
	var filePaths []string
	var fileSlots []int

	for i, arg := range args {
		switch {
		case isFile(arg):
			filePaths = append(filePaths, arg)
			fileSlots = append(fileSlots, i)
		case hasScheme(arg):
			out[i] = Source{Kind: SourceURL, Name: arg, Content: arg}
		default:
			out[i] = Source{Kind: SourceText, Content: arg}
		}
	}

	files, err := ReadFiles(ctx, filePaths, maxBytes)
	if err != nil {
		return nil, err
	}
	for j, slot := range fileSlots {
		out[slot] = files[j]
	}
	return out, nil
}

func isFile(arg string) bool {
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}

func hasScheme(arg string) bool {
	arg = strings.TrimSpace(arg)
	i := strings.Index(arg, "://")
	return i > 0 && !strings.ContainsAny(arg[:i], " /")
}
