package traverser_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/traverser"
)

// recordingVisitor is a behavioral double over an in-memory tree, used to describe the
// two-phase protocol's walk order independent of any real metadata/object-store backend.
type recordingVisitor struct {
	children map[string]models.NodeList
	excluded map[string]struct{}

	events []string
}

func (v *recordingVisitor) GetTree(ctx context.Context, folder models.Node) (models.NodeList, error) {
	return v.children[folder.ID], nil
}

func (v *recordingVisitor) ExcludeNodes(nodes models.NodeList) map[string]struct{} {
	if v.excluded == nil {
		return map[string]struct{}{}
	}
	return v.excluded
}

func (v *recordingVisitor) ProcessFile(ctx context.Context, sourceFile, destinationParent models.Node) error {
	v.events = append(v.events, "file:"+sourceFile.ID)
	return nil
}

func (v *recordingVisitor) ProcessFolder(ctx context.Context, sourceFolder, destinationParent models.Node) (models.Node, error) {
	v.events = append(v.events, "folder:"+sourceFolder.ID)
	return models.Node{ID: "dest-" + sourceFolder.ID}, nil
}

var _ = Describe("Traverse", func() {
	var visitor *recordingVisitor

	BeforeEach(func() {
		visitor = &recordingVisitor{
			children: map[string]models.NodeList{
				"root": {
					{ID: "docs", Type: models.ResourceTypeFolder},
					{ID: "readme", Type: models.ResourceTypeFile},
				},
				"docs": {
					{ID: "guide", Type: models.ResourceTypeFile},
				},
			},
		}
	})

	It("visits a folder before recursing into its children", func() {
		err := traverser.New(visitor).Traverse(context.Background(), models.Node{ID: "root"}, models.Node{ID: "dest-root"})

		Expect(err).NotTo(HaveOccurred())
		Expect(visitor.events).To(Equal([]string{"folder:docs", "file:guide", "file:readme"}))
	})

	When("a node is excluded at its level", func() {
		BeforeEach(func() {
			visitor.excluded = map[string]struct{}{"readme": {}}
		})

		It("skips the excluded node without visiting it or its descendants", func() {
			err := traverser.New(visitor).Traverse(context.Background(), models.Node{ID: "root"}, models.Node{ID: "dest-root"})

			Expect(err).NotTo(HaveOccurred())
			Expect(visitor.events).To(Equal([]string{"folder:docs", "file:guide"}))
		})
	})

	When("an excluded folder has children", func() {
		BeforeEach(func() {
			visitor.excluded = map[string]struct{}{"docs": {}}
		})

		It("never descends into the excluded folder", func() {
			err := traverser.New(visitor).Traverse(context.Background(), models.Node{ID: "root"}, models.Node{ID: "dest-root"})

			Expect(err).NotTo(HaveOccurred())
			Expect(visitor.events).To(Equal([]string{"file:readme"}))
		})
	})
})
