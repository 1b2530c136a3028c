package routes_test

import (
	"net/http"

	. "github.com/stepscale/autoscaler/routes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Routes", func() {

	Describe("AutoscalerRoutes", func() {

		Context("GetTarget", func() {
			It("returns the correct path", func() {
				path, err := AutoscalerRoutes().Get(GetTargetRouteName).GetPathTemplate()
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(Equal(TargetPath))

				methods, err := AutoscalerRoutes().Get(GetTargetRouteName).GetMethods()
				Expect(err).NotTo(HaveOccurred())
				Expect(methods).To(ConsistOf(http.MethodGet))
			})
		})

		Context("GetReplicas", func() {
			It("returns the correct path", func() {
				path, err := AutoscalerRoutes().Get(GetReplicasRouteName).GetPathTemplate()
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(Equal(ReplicasPath))
			})
		})

		Context("GetScalingHistories", func() {
			It("returns the correct path", func() {
				path, err := AutoscalerRoutes().Get(GetScalingHistoriesRouteName).GetPathTemplate()
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(Equal(ScalingHistoriesPath))
			})
		})
	})
})
