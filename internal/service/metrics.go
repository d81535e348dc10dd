package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filebox_uploads_total",
		Help: "Uploaded files by storage location and result.",
	}, []string{"location", "result"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filebox_upload_bytes_total",
		Help: "Bytes accepted by uploads.",
	})

	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filebox_downloads_total",
		Help: "Content deliveries by response status.",
	}, []string{"status"})

	downloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filebox_download_bytes_total",
		Help: "Bytes written to clients by content deliveries.",
	})

	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "filebox_active_streams",
		Help: "Content deliveries in progress.",
	})

	folderDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filebox_folder_deletes_total",
		Help: "Recursive folder deletes by outcome.",
	}, []string{"outcome"})

	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filebox_payments_total",
		Help: "Payment notifications by provider and outcome.",
	}, []string{"provider", "outcome"})
)
