package fake_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/woozymasta/cs2-exporter/internal/fake"
	"github.com/woozymasta/cs2-exporter/internal/game"
)

var target = game.Target{Host: "127.0.0.1", Port: 27015}

var _ = Describe("Querier", func() {
	It("should always fail with a full fail rate", func() {
		q := fake.New(1)
		q.FailRate = 1

		status, err := q.Query(target, 0)

		Expect(status).To(BeNil())
		Expect(errors.Is(err, fake.ErrUnreachable)).To(BeTrue())
		var qe *game.QueryError
		Expect(errors.As(err, &qe)).To(BeTrue())
	})

	It("should generate plausible statuses without failures", func() {
		q := fake.New(42)
		q.FailRate = 0
		q.MaxPlayers = 16

		seen := map[string]bool{}
		for range 200 {
			status, err := q.Query(target, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Players).To(BeNumerically(">=", 0))
			Expect(status.Players).To(BeNumerically("<=", 16))
			seen[status.ResolveMap()] = true
		}

		Expect(seen).To(HaveKey(game.UnknownMap))
		for name := range seen {
			if name != game.UnknownMap {
				Expect(fake.Maps).To(ContainElement(name))
			}
		}
	})

	It("should be deterministic for a seed", func() {
		a, b := fake.New(7), fake.New(7)
		for range 20 {
			sa, ea := a.Query(target, 0)
			sb, eb := b.Query(target, 0)
			Expect(ea == nil).To(Equal(eb == nil))
			Expect(sa).To(Equal(sb))
		}
	})
})
