package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"library-backend/internal/client/catalog"
)

func printAuthors(w io.Writer, authors []catalog.Author) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBORN\tBOOKS")
	for _, a := range authors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, optInt(a.Born), optInt(a.BookCount))
	}
	_ = tw.Flush()
}

func printBooks(w io.Writer, books []catalog.Book) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHOR\tPUBLISHED\tGENRES")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.Title, b.Author.Name, b.Published, strings.Join(b.Genres, ", "))
	}
	_ = tw.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
