package redline_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/redline"
	"github.com/aretw0/redline/internal/testdocx"
	"github.com/aretw0/redline/pkg/core"
)

const commentsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments xmlns:w="` + testdocx.NSW + `"><w:comment w:id="0" w:author="Ana"><w:p><w:r><w:t>Why?</w:t></w:r></w:p></w:comment></w:comments>`

func commentedPackage(t *testing.T) []byte {
	t.Helper()
	entries := testdocx.Entries(testdocx.Body(
		`<w:p><w:commentRangeStart w:id="0"/><w:ins w:id="1" w:author="Ana"><w:r><w:t>Hello</w:t></w:r></w:ins>` +
			`<w:commentRangeEnd w:id="0"/><w:r><w:commentReference w:id="0"/></w:r></w:p>`))
	entries = testdocx.Replace(entries, "word/_rels/document.xml.rels",
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`+
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments" Target="comments.xml"/>`+
			`</Relationships>`)
	entries = append(entries, testdocx.Entry{Name: "word/comments.xml", Data: commentsXML})
	return testdocx.Zip(t, entries...)
}

func TestFinishReview_EndToEnd(t *testing.T) {
	data := testdocx.Build(t, testdocx.Body(
		`<w:p><w:ins w:id="1" w:author="A"><w:r><w:t>Hello</w:t></w:r></w:ins>`+
			`<w:del w:id="2" w:author="A"><w:r><w:delText>Bye</w:delText></w:r></w:del></w:p>`))

	text, reviewed, err := redline.FinishReview(data)
	require.NoError(t, err)
	assert.Contains(t, text, "<w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p></w:body>")

	// The returned package carries the same main part.
	again, err := redline.GetMainDocumentText(reviewed)
	require.NoError(t, err)
	assert.Equal(t, text, again)

	// Entries other than the main part keep their exact content and order.
	assert.Equal(t, testdocx.Names(t, data), testdocx.Names(t, reviewed))
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml", "docProps/core.xml"} {
		assert.Equal(t, testdocx.ReadEntry(t, data, name), testdocx.ReadEntry(t, reviewed, name), name)
	}

	// A finished package has nothing left to accept.
	infos, err := redline.ListRevisions(reviewed)
	require.NoError(t, err)
	assert.Empty(t, infos)

	_, untouched, err := redline.FinishReview(reviewed)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(reviewed, untouched), "second review must return its input")
}

func TestFinishReview_CleanPackage(t *testing.T) {
	data := testdocx.Build(t, testdocx.Body(
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Clean</w:t></w:r></w:p>`))

	before, err := redline.GetMainDocumentText(data)
	require.NoError(t, err)

	text, reviewed, err := redline.FinishReview(data)
	require.NoError(t, err)
	assert.Equal(t, before, text, "finishing a clean package must not change its text")
	assert.Equal(t, data, reviewed, "finishing a clean package must not change its bytes")
	for _, name := range testdocx.Names(t, data) {
		assert.Equal(t, testdocx.ReadEntry(t, data, name), testdocx.ReadEntry(t, reviewed, name), name)
	}
}

func TestFinishReview_Comments(t *testing.T) {
	data := commentedPackage(t)

	t.Run("Kept By Default", func(t *testing.T) {
		text, reviewed, err := redline.FinishReview(data)
		require.NoError(t, err)
		assert.Contains(t, text, "w:commentRangeStart")
		assert.Contains(t, testdocx.Names(t, reviewed), "word/comments.xml")
	})

	t.Run("Removed On Request", func(t *testing.T) {
		svc := redline.New(redline.WithRemoveComments(true))
		review, err := svc.FinishReview(t.Context(), data)
		require.NoError(t, err)

		assert.NotContains(t, review.Text, "comment")
		assert.Equal(t, []string{"word/comments.xml"}, review.Removed)
		assert.Equal(t, 3, review.Stats.CommentAnchors)
		assert.Equal(t, 1, review.Stats.CommentParts)
		assert.NotContains(t, testdocx.Names(t, review.Package), "word/comments.xml")
		assert.NotContains(t, string(testdocx.ReadEntry(t, review.Package, "word/_rels/document.xml.rels")), "comments")
	})
}

func TestFinishReview_FailsWhole(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"Not A Zip", []byte("plain text"), core.ErrCorruptContainer},
		{"Missing Main Part", testdocx.Zip(t, testdocx.Replace(testdocx.Entries(testdocx.Body("")), "word/document.xml", "")...), core.ErrNoMainPart},
		{"Malformed XML", testdocx.Build(t, `<w:document`), core.ErrMalformedXML},
		{"Orphan Property Change", testdocx.Build(t, testdocx.Body(`<w:p><w:pPr><w:pPrChange/></w:pPr></w:p>`)), core.ErrMalformedRevision},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, out, err := redline.FinishReview(tc.data)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, text)
			assert.Nil(t, out)
		})
	}
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, redline.Version)
}
