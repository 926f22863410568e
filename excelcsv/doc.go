// Package excelcsv stores records in a CSV file in the dialect written by
// spreadsheet applications: comma separated, double-quote escaped, CRLF line
// endings, UTF-8 with a byte order marker and a header row of field names.
//
// # Basic Usage
//
//	s, err := excelcsv.Open("people.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	records, err := s.Read()
//	// ...
//	err = s.Append([]*excelcsv.Record{
//	    excelcsv.NewRecord("name", "Ann", "age", "31"),
//	})
//
// A missing file is not an error. Reading it gives no records and an empty
// schema. Header updates on a missing file are a no-op so a schema can be
// declared before any data is written.
//
// # Schema Evolution
//
// Adding fields ([Store.PrependFields], [Store.AppendFields],
// [Store.InsertFieldsAfter]) only rewrites the header line. Data rows keep
// their text, so values for new fields must be supplied by the caller before
// the next [Store.Write]. Removing or reordering fields rewrites every row.
//
// [Store.Change] returns a pending [SchemaChange]; nothing is written until
// [SchemaChange.Commit].
//
// [Store.ConvertChoiceField] expands a multiple choice field such as
// "Cat, Dog" into one Y/N field per choice.
//
// # Atomicity
//
// Every rewrite goes to a temporary file next to the store file which is
// renamed over it only after all data was written. On error the original
// file is left as it was.
//
// # Thread Safety
//
// A Store is not safe for concurrent use and there is no locking between
// processes. Callers must ensure a single writer.
package excelcsv
