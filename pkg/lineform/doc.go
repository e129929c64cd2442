// Package lineform extracts structured data from line-oriented text using
// declarative YAML pattern documents.
//
// This package allows you to:
//   - Describe the shape of invoices, reports, or logs as a pattern document
//   - Match buffered input against a pattern and receive a nested value tree
//   - Extract a stream of records from concatenated or growing input
//   - Follow a growing file and receive one result per completed record
//
// # Basic Usage
//
// Compile a pattern document once, then run it against input:
//
//	model, err := pattern.CompileFile("invoice.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := lineform.Extract(model, []string{
//	    "Invoice #123",
//	    "Widget 2 9.99",
//	    "Total: 19.98",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := json.Marshal(res.Value)
//	fmt.Println(string(out))
//
// A failed run returns a [*Failure] describing what failed, where in the
// pattern, and at which input line:
//
//	res, err := lineform.Extract(model, lines)
//	var f *lineform.Failure
//	if errors.As(err, &f) {
//	    log.Printf("no match: %s at %s, line %d", f.Kind, f.Path, f.Pos)
//	}
//
// # Modes
//
// By default a pattern must consume the entire input ([ModeStrict]).
// [ModePrefix] accepts a match of a leading portion and reports how many
// lines were consumed:
//
//	res, err := lineform.Extract(model, lines, lineform.WithMode(lineform.ModePrefix))
//
// # Streams and Watchers
//
// [Stream] cuts a sequence of records out of concatenated input, and
// [Watcher] does the same over a growing file:
//
//	w, err := lineform.NewWatcher(model, "orders.log", lineform.WithSkipUnmatched(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	results, errs, err := w.Watch(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    select {
//	    case res, ok := <-results:
//	        if !ok {
//	            return
//	        }
//	        handle(res.Value)
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("watch error: %v", err)
//	    }
//	}
//
// # Pattern Documents
//
// Documents are loaded and compiled by the [pattern] subpackage:
//
//	import "github.com/lineform/lineform-go/pkg/lineform/pattern"
//
//	model, err := pattern.CompileFile("invoice.yaml")
//
// See the [pattern] package for the YAML format and its validation rules.
//
// # Concurrency
//
// A compiled [pattern.Model] is immutable and may be shared by any number
// of concurrent Extract calls. A single run, Stream, or Watcher must not be
// used from multiple goroutines at once.
package lineform
