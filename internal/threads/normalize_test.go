package threads

import "testing"

func TestDecodeListBareArray(t *testing.T) {
	list, err := decodeList([]byte(`[{"id":"thr_1","subject":"a"},{"id":"thr_2","subject":"b"}]`))
	if err != nil {
		t.Fatalf("decodeList() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "thr_1" || list[1].ID != "thr_2" {
		t.Errorf("list = %+v", list)
	}
}

func TestDecodeListEnvelope(t *testing.T) {
	list, err := decodeList([]byte(`{"threads":[{"id":"thr_1"}]}`))
	if err != nil {
		t.Fatalf("decodeList() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "thr_1" {
		t.Errorf("list = %+v", list)
	}
}

func TestDecodeListEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "[]", `{"threads":[]}`, "{}"} {
		list, err := decodeList([]byte(raw))
		if err != nil {
			t.Errorf("decodeList(%q) error = %v", raw, err)
		}
		if len(list) != 0 {
			t.Errorf("decodeList(%q) = %+v, want empty", raw, list)
		}
	}
}

func TestDecodeListInvalid(t *testing.T) {
	if _, err := decodeList([]byte(`[{"id":`)); err == nil {
		t.Error("decodeList on truncated JSON must fail")
	}
}
