package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/TWRT/taskboard/internal/api"
	"github.com/TWRT/taskboard/internal/logging"
	"github.com/TWRT/taskboard/internal/repository"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	logging.Init(os.Getenv("LOG_FILE"))
	log := logging.Logger

	hubBaseUrl := os.Getenv("TASKHUB_BASE_URL")
	hubToken := os.Getenv("TASKHUB_TOKEN")
	if hubBaseUrl == "" || hubToken == "" {
		log.Fatal("TASKHUB_BASE_URL e TASKHUB_TOKEN não configurados")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./taskboard.db"
	}

	// Inicializar store local (labels, tags, prefs)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatal("Erro ao inicializar BD: ", err)
	}
	defer db.Close()

	fmt.Println("✅ Store local inicializado!")

	router := api.SetupRouter(db, hubBaseUrl, hubToken, log)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	fmt.Println("🚀 Servidor rodando em http://localhost" + addr)
	fmt.Println("📝 Endpoints disponíveis:")
	fmt.Println("   GET /board - Quadro agrupado por status/stage")
	fmt.Println("   POST /tasks - Criar task")
	fmt.Println("   POST /tasks/:id/move - Mover task (drag-and-drop)")
	fmt.Println("   POST /tasks/:id/assignees - Salvar responsáveis")
	fmt.Println("   GET /labels - Labels locais")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Erro ao iniciar servidor: ", err)
	}
}
