package store

import (
	"context"

	"github.com/dcsim/rack-planner/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("collection reload", func() {
	var (
		ctx context.Context
		db  *CollectionStore
	)

	BeforeEach(func() {
		ctx = context.TODO()
		var err error
		db, err = NewCollectionStore(GinkgoT().TempDir(), false)
		Expect(err).To(BeNil())
		DeferCleanup(db.Close)

		Expect(db.Set(ctx, CollectionUsers, []model.User{{Username: "alice", Password: "pw"}})).To(Succeed())
		Expect(db.ReloadAll(ctx)).To(Succeed())
	})

	It("keeps a write that lands between reading the files and swapping the cache", func() {
		snap, err := db.readAll(ctx)
		Expect(err).To(BeNil())

		Expect(db.Set(ctx, CollectionUsers, []model.User{{Username: "bob", Password: "pw"}})).To(Succeed())
		db.swap(snap)

		users := []model.User{}
		Expect(db.Get(ctx, CollectionUsers, &users)).To(Succeed())
		Expect(users).To(Equal([]model.User{{Username: "bob", Password: "pw"}}))
	})

	It("takes the file content for collections nobody wrote meanwhile", func() {
		snap, err := db.readAll(ctx)
		Expect(err).To(BeNil())

		Expect(db.Set(ctx, CollectionNetworks, []model.Network{{Name: "lan"}})).To(Succeed())
		db.swap(snap)

		users := []model.User{}
		Expect(db.Get(ctx, CollectionUsers, &users)).To(Succeed())
		Expect(users).To(HaveLen(1))

		networks := []model.Network{}
		Expect(db.Get(ctx, CollectionNetworks, &networks)).To(Succeed())
		Expect(networks).To(Equal([]model.Network{{Name: "lan"}}))
	})
})
