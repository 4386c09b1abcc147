package author

// NameIndex maps an author name to the number of books credited to that name.
// Books are joined to authors by name, not by id: two authors sharing a
// name share one count.
type NameIndex map[string]int

// BuildNameIndex counts books per resolved author name. bookAuthors holds
// the author of each book, one entry per book.
func BuildNameIndex(bookAuthors []Author) NameIndex {
	idx := make(NameIndex, len(bookAuthors))
	for _, a := range bookAuthors {
		idx[a.Name]++
	}
	return idx
}

// BookCount returns zero for names with no books.
func (idx NameIndex) BookCount(name string) int {
	return idx[name]
}

// DeriveViews builds the allAuthors rows. The index is rebuilt on every
// call so counts always reflect the collections passed in.
func DeriveViews(authors []Author, bookAuthors []Author) []View {
	idx := BuildNameIndex(bookAuthors)

	views := make([]View, 0, len(authors))
	for _, a := range authors {
		views = append(views, a.ToView(idx.BookCount(a.Name)))
	}
	return views
}
