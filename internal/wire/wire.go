package wire

import (
	"Affinity/internal/api"
	"Affinity/internal/api/config"
	"Affinity/internal/api/handler"
	"Affinity/internal/job"
	"Affinity/internal/pkg/client"
	"Affinity/internal/pkg/cron"
	"Affinity/internal/pkg/kafka"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/redis"
	"Affinity/internal/repository"
	"Affinity/internal/service"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	KafkaManager *kafka.ConsumerManager
	Producer     *kafka.NotificationProducer
	CronMgr      *cron.Manager
}

func BuildApplication(cfg *config.Config, db *gorm.DB, rdb *goredis.Client, mongoDB *mongodriver.Database) (*ApplicationContainer, error) {
	// 存储
	interestRepo := repository.NewUserInterestRepository(db)
	activityRepo := mongo.NewUserActivityRepo(mongoDB)
	recommendationRepo := mongo.NewRecommendationRepo(mongoDB)
	recommendCache := redis.NewRecommendCache(rdb)

	// 协作服务
	productClient := client.NewProductClient(cfg.Services)
	userClient := client.NewUserClient(cfg.Services)

	producer, err := kafka.NewNotificationProducer(cfg)
	if err != nil {
		return nil, err
	}

	interestService := service.NewInterestService(activityRepo, interestRepo, recommendCache, cfg.Interest)
	activityService := service.NewActivityService(activityRepo, recommendCache, interestService, cfg.Activity, cfg.Interest)
	recommendationService := service.NewRecommendationService(interestRepo, recommendationRepo, recommendCache, productClient, cfg.Recommendation)
	taskService := service.NewTaskService(userClient, recommendationService, recommendationRepo, recommendCache, producer, cfg.Recommendation)

	handlers := &api.HandlersGroup{
		ActivityHandler:       handler.NewActivityHandler(activityService),
		InterestHandler:       handler.NewInterestHandler(interestService),
		RecommendationHandler: handler.NewRecommendationHandler(recommendationService),
		TaskHandler:           handler.NewTaskHandler(taskService),
	}
	router := api.SetupRouter(handlers, cfg.Logstash)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, activityService, taskService)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}

	recomputeJob := job.NewInterestRecomputeJob(recommendCache, interestService)
	cronMgr := cron.NewCronManager(recomputeJob, cfg.Interest.RecomputeCron)

	return &ApplicationContainer{
		Router:       router,
		KafkaManager: kafkaMgr,
		Producer:     producer,
		CronMgr:      cronMgr,
	}, nil
}
