package iteratable

import "testing"

func TestSetBasic(t *testing.T) {
	S := NewSet(0)
	S.Add(1)
	S.Add(2)
	S.Add(2)
	if S.Size() != 2 {
		t.Errorf("expected set of size 2, has %d", S.Size())
	}
	if !S.Contains(1) || !S.Contains(2) {
		t.Errorf("expected set to contain 1 and 2, is %v", S.Values())
	}
	S.Remove(1)
	if S.Contains(1) || S.Size() != 1 {
		t.Errorf("expected set to be {2}, is %v", S.Values())
	}
}

func TestSetOps(t *testing.T) {
	S := NewSet(0)
	S.Add("a")
	S.Add("b")
	R := NewSet(0)
	R.Add("b")
	R.Add("c")
	S.Union(R)
	if S.Size() != 3 {
		t.Errorf("expected union to have 3 items, has %d", S.Size())
	}
	D := S.Copy().Difference(R)
	if D.Size() != 1 || !D.Contains("a") {
		t.Errorf("expected difference to be {a}, is %v", D.Values())
	}
	if !S.Copy().Equals(S) {
		t.Errorf("expected copy of S to equal S")
	}
}

func TestSetIteration(t *testing.T) {
	S := NewSet(0)
	S.Add(1)
	S.Add(2)
	count := 0
	S.IterateOnce()
	for S.Next() {
		if S.Item() == 2 {
			S.Add(3) // added during iteration, must be visited
		}
		count++
	}
	if count != 3 {
		t.Errorf("expected iteration to visit 3 items, visited %d", count)
	}
	if S.Size() != 3 {
		t.Errorf("expected set to keep its items, has %d", S.Size())
	}
}

func TestSetExhaust(t *testing.T) {
	S := NewSet(0)
	S.Add(1)
	S.Add(2)
	S.Exhaust()
	count := 0
	for S.Next() {
		S.Item()
		count++
	}
	if count != 2 || S.Size() != 0 {
		t.Errorf("expected exhausting iteration to drain the set, %d left", S.Size())
	}
}

func TestSetSubset(t *testing.T) {
	S := NewSet(0)
	for _, n := range []int{1, 2, 3, 4, 5} {
		S.Add(n)
	}
	S.Subset(func(el interface{}) bool {
		return el.(int)%2 == 0
	})
	if S.Size() != 2 {
		t.Errorf("expected subset {2,4}, is %v", S.Values())
	}
}
