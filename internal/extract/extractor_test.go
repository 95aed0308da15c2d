package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", "application/pdf"},
		{"scan.PNG", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"fax.tiff", "image/tiff"},
		{"fax.tif", "image/tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := mimeTypeFor(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMimeTypeForUnsupported(t *testing.T) {
	_, err := mimeTypeFor("report.docx")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRenderPageMarkdown(t *testing.T) {
	got := renderPageMarkdown(2, "  some text\nmore text  ")
	assert.Equal(t, "## Page 2\n\nsome text\nmore text\n", got)
}

func TestWritePageFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := writePageFiles(dir, []string{"## Page 1\n\nfirst\n", "## Page 2\n\nsecond\n"})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join(dir, "page1.md"), files[0])
	assert.Equal(t, filepath.Join(dir, "page2.md"), files[1])

	content, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Contains(t, string(content), "second")
}

func TestWritePageFilesNoDir(t *testing.T) {
	files, err := writePageFiles("", []string{"## Page 1\n\nfirst\n"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCombinePages(t *testing.T) {
	got := combinePages([]string{"## Page 1\n\na\n", "## Page 2\n\nb\n"})
	assert.Equal(t, "## Page 1\n\na\n\n\n## Page 2\n\nb\n", got)
}

func TestPageTextsFromAnchors(t *testing.T) {
	text := "page one textpage two text"
	doc := &documentaipb.Document{
		Text: text,
		Pages: []*documentaipb.Document_Page{
			{
				Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{
						TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
							{StartIndex: 0, EndIndex: 13},
						},
					},
				},
			},
			{
				Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{
						TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
							{StartIndex: 13, EndIndex: 26},
						},
					},
				},
			},
		},
	}

	pages := pageTexts(doc)
	require.Len(t, pages, 2)
	assert.Equal(t, "page one text", pages[0])
	assert.Equal(t, "page two text", pages[1])
}

func TestPageTextsWithoutPages(t *testing.T) {
	doc := &documentaipb.Document{Text: "all the text"}
	pages := pageTexts(doc)
	require.Len(t, pages, 1)
	assert.Equal(t, "all the text", pages[0])
}

func TestPageTextsEmptyDocument(t *testing.T) {
	assert.Nil(t, pageTexts(&documentaipb.Document{Text: "   "}))
}

func TestAnchorTextIgnoresOutOfRangeSegments(t *testing.T) {
	got := anchorText("short", &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
			{StartIndex: 0, EndIndex: 5},
			{StartIndex: 2, EndIndex: 99},
		},
	})
	assert.Equal(t, "short", got)
}

func TestHasText(t *testing.T) {
	assert.False(t, hasText(nil))
	assert.False(t, hasText([]string{"", "  \n"}))
	assert.True(t, hasText([]string{"", "words"}))
}
