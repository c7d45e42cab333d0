package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/davisjr/adaptive-rag/internal/api/middleware"
	"github.com/davisjr/adaptive-rag/internal/jobs"
	"github.com/davisjr/adaptive-rag/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/collections").
			To(handler.Collections).
			Doc("List searchable collections").
			Metadata(restfulspec.KeyOpenAPITags, []string{"collections"}).
			Writes(CollectionsResponse{}).
			Returns(200, "OK", CollectionsResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/query").
			To(handler.Query).
			Doc("Answer a question with the selected strategy").
			Metadata(restfulspec.KeyOpenAPITags, []string{"query"}).
			Reads(QueryRequest{}).
			Writes(models.RunResult{}).
			Returns(200, "OK", models.RunResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Collection Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/query/async").
			To(handler.QueryAsync).
			Doc("Queue a question for asynchronous processing").
			Metadata(restfulspec.KeyOpenAPITags, []string{"query"}).
			Reads(QueryRequest{}).
			Writes(jobs.Job{}).
			Returns(202, "Accepted", jobs.Job{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/jobs/{job_id}").
			To(handler.GetJob).
			Doc("Fetch the status and result of a queued query").
			Metadata(restfulspec.KeyOpenAPITags, []string{"query"}).
			Param(ws.PathParameter("job_id", "Job identifier returned by the async endpoint").DataType("string")).
			Writes(jobs.Job{}).
			Returns(200, "OK", jobs.Job{}).
			Returns(404, "Job Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
