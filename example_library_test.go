package dyntext_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/dyntext"
	"github.com/aretw0/dyntext/pkg/adapters/manual"
	"github.com/aretw0/dyntext/pkg/adapters/memory"
)

// ExampleNewRotating cycles a label through three texts. The manual scheduler
// stands in for wall-clock time.
func ExampleNewRotating() {
	sched := manual.New()
	source := memory.NewSource(time.Second, "first", "second", "third")

	label, err := dyntext.NewRotating(source, dyntext.WithScheduler(sched))
	if err != nil {
		log.Fatal(err)
	}
	defer label.Close()

	if err := label.StartRotations(context.Background()); err != nil {
		log.Fatal(err)
	}

	for range 4 {
		// Let the text settle, then reach the next rotation.
		sched.Advance(time.Second)
		fmt.Println(label.BaseText(), label.RotationState().Index)
	}

	label.StopRotations()
	sched.Advance(time.Second)
	fmt.Println("active:", label.IsActive())

	// Output:
	// second 1
	// third 2
	// first 0
	// second 1
	// active: false
}
