package events_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/landledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan events out to listeners.")
	{
		t.Logf("\tTest 0:\tWhen two listeners are registered.")
		{
			evts := events.New()
			a := evts.Acquire("a")
			b := evts.Acquire("b")

			if evts.Acquire("a") != a {
				t.Fatalf("\t%s\tTest 0:\tShould return the same channel for the same id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return the same channel for the same id.", success)

			evts.Send("viewer: block: 2")
			if msg := <-a; msg != "viewer: block: 2" {
				t.Fatalf("\t%s\tTest 0:\tShould deliver to a: got %q", failed, msg)
			}
			if msg := <-b; msg != "viewer: block: 2" {
				t.Fatalf("\t%s\tTest 0:\tShould deliver to b: got %q", failed, msg)
			}
			t.Logf("\t%s\tTest 0:\tShould deliver to every listener.", success)

			if err := evts.Release("a"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould release a: %v", failed, err)
			}
			if _, open := <-a; open {
				t.Fatalf("\t%s\tTest 0:\tShould close a released channel.", failed)
			}
			if err := evts.Release("a"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould fail to release an unknown id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould release listeners.", success)

			evts.Shutdown()
			if _, open := <-b; open || evts.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould close every channel on shutdown.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould close every channel on shutdown.", success)
		}

		t.Logf("\tTest 1:\tWhen a listener falls behind.")
		{
			evts := events.New()
			evts.Acquire("slow")

			for i := range 105 {
				evts.Send(fmt.Sprintf("event %d", i))
			}

			if got := evts.Dropped("slow"); got != 5 {
				t.Fatalf("\t%s\tTest 1:\tShould drop the overflow without blocking: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould drop the overflow without blocking.", success)
		}
	}
}
