package cmdqueue

import (
	"testing"

	"github.com/oisee/gblr35902/pkg/reg"
)

func TestFIFOOrder(t *testing.T) {
	q := New(4)
	q.Enqueue(WriteReg8(reg.A, 1))
	q.Enqueue(WriteReg8(reg.B, 2))
	q.Enqueue(CycleTerminator())

	c, ok := q.Dequeue()
	if !ok || c.Target.Reg8 != reg.A || c.Value != 1 {
		t.Fatalf("first dequeue wrong: %+v ok=%v", c, ok)
	}
	c, ok = q.Dequeue()
	if !ok || c.Target.Reg8 != reg.B || c.Value != 2 {
		t.Fatalf("second dequeue wrong: %+v ok=%v", c, ok)
	}
	c, ok = q.Dequeue()
	if !ok || c.Kind != KindHalt || !c.IsCycleTerminator {
		t.Fatalf("third dequeue wrong: %+v ok=%v", c, ok)
	}
	if !q.IsEmpty() {
		t.Fatal("queue should be empty")
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue on empty queue should report !ok")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	q := New(1)
	q.Enqueue(WriteReg8(reg.A, 42))
	p, ok := q.Peek()
	if !ok || p.Value != 42 {
		t.Fatalf("peek wrong: %+v ok=%v", p, ok)
	}
	if q.IsEmpty() {
		t.Fatal("peek must not consume")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
}

func TestFree(t *testing.T) {
	q := New(2)
	q.Enqueue(CycleTerminator())
	q.Free()
	if !q.IsEmpty() {
		t.Fatal("queue should be empty after Free")
	}
}
