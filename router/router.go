package router

import (
	"ShopMaint_Backend/config"
	"ShopMaint_Backend/controllers"
	"ShopMaint_Backend/middleware"

	"github.com/gin-gonic/gin"
)

func Setup() *gin.Engine {
	r := gin.Default()

	// CORS for the frontend
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/healthz", controllers.Health)

	api := r.Group("/api")

	// Bearer auth only when a JWKS endpoint is configured.
	if config.C.AuthJWKSURL != "" {
		jwtMW, _, err := middleware.NewJWTMiddleware(middleware.JWTConfig{
			Issuer:   config.C.AuthIssuer,
			Audience: config.C.AuthAudience,
			JWKSURL:  config.C.AuthJWKSURL,
		})
		if err != nil {
			panic(err) // fail at startup rather than run unauthenticated
		}
		api.Use(jwtMW)
	}

	{
		api.GET("/machine-categories", controllers.ListMachineCategories)

		machines := api.Group("/machines")
		{
			machines.GET("", controllers.ListMachines)
			machines.GET("/:id", controllers.GetMachine)
			machines.POST("", controllers.CreateMachine)
			machines.PUT("/:id", controllers.UpdateMachine)
			machines.DELETE("/:id", controllers.DeleteMachine)
			machines.PUT("/:id/hours", controllers.UpdateMachineHours)
			machines.GET("/:id/documents", controllers.ListMachineDocuments)
		}

		maint := api.Group("/maintenance")
		if config.C.AuthJWKSURL != "" && config.C.AuthMaintScope != "" {
			maint.Use(middleware.RequireScope(config.C.AuthMaintScope))
		}
		{
			plans := maint.Group("/plans")
			{
				plans.GET("", controllers.ListPlans)
				plans.GET("/due", controllers.ListDuePlans)
				plans.GET("/:id", controllers.GetPlan)
				plans.POST("", controllers.CreatePlan)
				plans.PUT("/:id", controllers.UpdatePlan)
				plans.DELETE("/:id", controllers.DeletePlan)
				plans.POST("/:id/deactivate", controllers.DeactivatePlan)
				plans.POST("/:id/image", controllers.UploadPlanImage)
			}

			tasks := maint.Group("/tasks")
			{
				tasks.GET("", controllers.ListTasks)
				tasks.GET("/:id", controllers.GetTask)
				tasks.POST("", controllers.CreateTask)
				tasks.POST("/generate", controllers.GenerateTasks)
				tasks.PUT("/:id/assign", controllers.AssignTask)
				tasks.POST("/:id/start", controllers.StartTask)
				tasks.POST("/:id/complete", controllers.CompleteTask)
				tasks.POST("/:id/cancel", controllers.CancelTask)
				tasks.PUT("/:id/checklist/:itemId", controllers.SubmitChecklistItem)
			}

			escalations := maint.Group("/escalations")
			{
				escalations.GET("", controllers.ListEscalations)
				escalations.GET("/:id", controllers.GetEscalation)
				escalations.POST("", controllers.CreateEscalation)
				escalations.POST("/:id/acknowledge", controllers.AcknowledgeEscalation)
				escalations.POST("/:id/resolve", controllers.ResolveEscalation)
				escalations.POST("/:id/reescalate", controllers.ReescalateEscalation)
			}
		}

		consumables := api.Group("/consumables")
		{
			consumables.GET("", controllers.ListConsumables)
			consumables.GET("/:id", controllers.GetConsumable)
			consumables.POST("", controllers.CreateConsumable)
			consumables.PUT("/:id", controllers.UpdateConsumable)
			consumables.DELETE("/:id", controllers.DeleteConsumable)
		}

		equipment := api.Group("/measuring-equipment")
		{
			equipment.GET("", controllers.ListMeasuringEquipment)
			equipment.GET("/:id", controllers.GetMeasuringEquipment)
			equipment.POST("", controllers.CreateMeasuringEquipment)
			equipment.PUT("/:id", controllers.UpdateMeasuringEquipment)
			equipment.DELETE("/:id", controllers.DeleteMeasuringEquipment)
		}

		api.POST("/files", controllers.UploadFile)
		api.GET("/files/:id", controllers.DownloadFile)
		api.DELETE("/files/:id", controllers.DeleteFile)
	}

	return r
}
