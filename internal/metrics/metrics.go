package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var documentsUploaded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docvault_documents_uploaded_total",
	Help: "Documents successfully ingested",
})

var documentsDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docvault_documents_deleted_total",
	Help: "Documents removed from the catalog",
})

var thumbnailOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docvault_thumbnails_total",
	Help: "Thumbnail generation attempts by outcome",
}, []string{"outcome"})

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

func DocumentUploaded() {
	documentsUploaded.Inc()
}

func DocumentDeleted() {
	documentsDeleted.Inc()
}

func ThumbnailGenerated() {
	thumbnailOutcomes.WithLabelValues("generated").Inc()
}

func ThumbnailFailed() {
	thumbnailOutcomes.WithLabelValues("failed").Inc()
}
