package pattern

import (
	"testing"
)

// FuzzLoadBytes tests LoadBytes with arbitrary YAML input to ensure it never
// panics and properly validates input.
func FuzzLoadBytes(f *testing.F) {
	// Seed with a valid document
	f.Add([]byte(`version: 1
name: demo
elements:
  - line:
      regex: 'hello (\w+)'
      bindProperties:
        - property: who
`))

	// Seed with edge cases
	f.Add([]byte(""))                      // Empty
	f.Add([]byte("not yaml"))              // Invalid YAML
	f.Add([]byte("version: 999"))          // Unsupported version
	f.Add([]byte("version: 1\nname: x"))   // No elements
	f.Add(make([]byte, MaxDocumentSize+1)) // Too large
	f.Add([]byte(`version: 1
name: demo
elements:
  - repeat:
      bindArray: xs
      mode: {exactly: -1}
      elements:
        - anyline: {}
`))

	// Seed with invalid UTF-8
	f.Add([]byte{0xff, 0xfe, 0xfd})

	f.Fuzz(func(t *testing.T, data []byte) {
		// LoadBytes should never panic, regardless of input
		doc, err := LoadBytes(data)

		// Either both should be nil (error case) or both should be non-nil
		// (success case)
		if (doc == nil) != (err != nil) {
			t.Errorf("LoadBytes inconsistent: doc=%v, err=%v", doc != nil, err)
		}
		if doc == nil {
			return
		}

		// A document that passed validation must satisfy the schema
		// invariants end to end.
		if doc.Version != SupportedVersion {
			t.Errorf("LoadBytes succeeded with unsupported version: %d", doc.Version)
		}
		if doc.Name == "" {
			t.Error("LoadBytes succeeded with empty name")
		}
		if len(doc.Elements) == 0 {
			t.Error("LoadBytes succeeded with no elements")
		}
		checkElements(t, doc.Elements)
	})
}

func checkElements(t *testing.T, elems []Element) {
	t.Helper()
	for i := range elems {
		e := &elems[i]
		if e.kind() == "" {
			t.Errorf("element[%d] passed validation without exactly one kind", i)
			continue
		}
		switch {
		case e.Line != nil:
			if e.Line.Regex == "" {
				t.Errorf("element[%d] has empty regex", i)
			}
			if len(e.Line.Regex) > MaxRegexLength {
				t.Errorf("element[%d] regex too long: %d (max %d)", i, len(e.Line.Regex), MaxRegexLength)
			}
		case e.Repeat != nil:
			if e.Repeat.BindArray == "" {
				t.Errorf("element[%d] has empty bindArray", i)
			}
			if e.Repeat.Mode.Keyword == "exactly" && e.Repeat.Mode.Count < 1 {
				t.Errorf("element[%d] has exactly count %d", i, e.Repeat.Mode.Count)
			}
			checkElements(t, e.Repeat.Elements)
		case e.Or != nil:
			for _, alt := range e.Or.Elements {
				if len(alt) == 0 {
					t.Errorf("element[%d] has empty alternative", i)
				}
				checkElements(t, alt)
			}
		}
	}
}
