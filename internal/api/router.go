package api

import (
	"database/sql"
	"net/http"

	"github.com/TWRT/taskboard/internal/api/handlers"
	"github.com/TWRT/taskboard/internal/cache"
	"github.com/TWRT/taskboard/internal/client/taskhub"
	"github.com/TWRT/taskboard/internal/repository"
	"github.com/TWRT/taskboard/internal/service"
	"github.com/sirupsen/logrus"
)

func SetupRouter(db *sql.DB, hubBaseUrl, hubToken string, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	hubClient := taskhub.NewTaskHubClient(hubBaseUrl, hubToken)

	labelRepo := repository.NewLabelRepository(db)
	prefRepo := repository.NewPrefRepository(db)

	store := cache.NewStore(hubClient, log)
	boardService := service.NewBoardService(store, labelRepo, prefRepo, log)

	resolver := HeaderResolver{}
	email := resolver.CurrentEmail

	boardHandler := handlers.NewBoardHandler(boardService, email)
	taskHandler := handlers.NewTaskHandler(boardService, email)
	labelHandler := handlers.NewLabelHandler(labelRepo)
	prefHandler := handlers.NewPrefHandler(prefRepo)

	mux.HandleFunc("GET /board", boardHandler.GetBoard)
	mux.HandleFunc("GET /projects", boardHandler.GetProjects)
	mux.HandleFunc("GET /stages", boardHandler.GetStages)
	mux.HandleFunc("GET /members", boardHandler.GetMembers)

	mux.HandleFunc("POST /tasks", taskHandler.CreateTask)
	mux.HandleFunc("POST /tasks/{id}/move", taskHandler.MoveTask)
	mux.HandleFunc("POST /tasks/{id}/assignees", taskHandler.SaveAssignees)
	mux.HandleFunc("POST /tasks/{id}/labels", taskHandler.ApplyLabels)
	mux.HandleFunc("DELETE /tasks/{id}", taskHandler.DeleteTask)

	mux.HandleFunc("GET /labels", labelHandler.ListLabels)
	mux.HandleFunc("POST /labels", labelHandler.CreateLabel)
	mux.HandleFunc("PUT /labels/{id}", labelHandler.UpdateLabel)
	mux.HandleFunc("DELETE /labels/{id}", labelHandler.DeleteLabel)

	mux.HandleFunc("GET /prefs/{board}", prefHandler.GetCollapsed)
	mux.HandleFunc("PUT /prefs/{board}", prefHandler.SetCollapsed)

	return enableCORS(mux)
}
