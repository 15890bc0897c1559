package redline_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/redline"
	"github.com/aretw0/redline/internal/testdocx"
)

// Example_finishReview accepts the tracked changes of a package and prints the resulting body.
func Example_finishReview() {
	data := testdocx.MustBuild(testdocx.Body(
		`<w:p><w:ins w:id="1" w:author="Ana"><w:r><w:t>Hello</w:t></w:r></w:ins>` +
			`<w:del w:id="2" w:author="Ana"><w:r><w:delText>Goodbye</w:delText></w:r></w:del></w:p>`))

	text, reviewed, err := redline.FinishReview(data)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(reviewed) > 0)
	fmt.Println(text[len(text)-len("<w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p></w:body></w:document>"):])
	// Output:
	// true
	// <w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p></w:body></w:document>
}

// Example_listRevisions lists the tracked changes still present in a package.
func Example_listRevisions() {
	data := testdocx.MustBuild(testdocx.Body(
		`<w:p><w:ins w:id="1" w:author="Ana"><w:r><w:t>Hello</w:t></w:r></w:ins></w:p>`))

	svc := redline.New()
	infos, err := svc.ListRevisions(context.Background(), data)
	if err != nil {
		log.Fatal(err)
	}

	for _, info := range infos {
		fmt.Printf("%s #%s by %s: %q\n", info.Kind, info.ID, info.Author, info.Text)
	}
	// Output:
	// insertion #1 by Ana: "Hello"
}
