// 导入示例课程目录
//
// 按邮箱复用已有用户，同一教师下同名课程会被跳过，可重复执行。
//
// 用法: go run scripts/seed_catalog.go -file scripts/seed/catalog.yaml

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"eduverse_backend/internal/config"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/database"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users   []validator.UserRequest `yaml:"users"`
	Courses []seedCourse            `yaml:"courses"`
}

type seedCourse struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Instructor  string       `yaml:"instructor"` // 教师邮箱
	Duration    string       `yaml:"duration"`
	Modules     []seedModule `yaml:"modules"`
}

type seedModule struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Resources   []seedResource `yaml:"resources"`
}

type seedResource struct {
	Title   string   `yaml:"title"`
	Type    string   `yaml:"type"`
	URL     string   `yaml:"url"`
	Content string   `yaml:"content"`
	Tags    []string `yaml:"tags"`
}

type seeder struct {
	store     repository.Store
	users     *service.UserService
	catalog   *service.CatalogService
	sequencer *service.ResourceSequencer
}

func main() {
	file := flag.String("file", "scripts/seed/catalog.yaml", "种子数据文件")
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取种子文件: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("解析种子文件失败: %v", err)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	store := repository.NewStore(db)
	locker := lock.NewKeyedMutex(cfg.Lock.Timeout)
	v := validator.New()
	s := &seeder{
		store:     store,
		users:     service.NewUserService(store, v),
		catalog:   service.NewCatalogService(store, locker, v),
		sequencer: service.NewResourceSequencer(store, locker, v, events.NopPublisher{}),
	}

	if err := s.run(context.Background(), &seed); err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Println("完成！")
}

func (s *seeder) run(ctx context.Context, seed *seedFile) error {
	byEmail := make(map[string]*model.User, len(seed.Users))
	for i := range seed.Users {
		u, err := s.ensureUser(ctx, &seed.Users[i])
		if err != nil {
			return err
		}
		byEmail[u.Email] = u
	}

	for _, c := range seed.Courses {
		instructor, ok := byEmail[strings.ToLower(c.Instructor)]
		if !ok {
			return util.NotFoundf("instructor %s", c.Instructor)
		}
		if err := s.ensureCourse(ctx, instructor, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, req *validator.UserRequest) (*model.User, error) {
	existing, err := s.store.Users().FindByEmail(ctx, strings.ToLower(req.Email))
	if err == nil {
		return existing, nil
	}
	if !util.IsNotFound(err) {
		return nil, err
	}
	u, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Seeded user", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *seeder) ensureCourse(ctx context.Context, instructor *model.User, c seedCourse) error {
	courses, _, err := s.catalog.ListCourses(ctx,
		repository.CourseFilter{InstructorID: instructor.ID, Title: c.Title},
		util.Page{Page: 1, Limit: util.MaxPageSize})
	if err != nil {
		return err
	}
	for _, existing := range courses {
		if existing.Title == c.Title {
			logger.Log.Info("Course already seeded", zap.String("title", c.Title))
			return nil
		}
	}

	course, err := s.catalog.CreateCourse(ctx, &validator.CourseRequest{
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: instructor.ID,
		Duration:     c.Duration,
	})
	if err != nil {
		return err
	}

	published := true
	for _, m := range c.Modules {
		module, err := s.catalog.CreateModule(ctx, course.ID, &validator.ModuleRequest{
			Title:       m.Title,
			Description: m.Description,
		})
		if err != nil {
			return err
		}
		for _, r := range m.Resources {
			_, err := s.sequencer.Append(ctx, module.ID, &validator.ResourceRequest{
				Title:       r.Title,
				Type:        r.Type,
				URL:         r.URL,
				Content:     r.Content,
				Tags:        r.Tags,
				IsPublished: &published,
				CreatedBy:   instructor.ID,
			})
			if err != nil {
				return err
			}
		}
	}
	logger.Log.Info("Seeded course", zap.String("title", c.Title), zap.Int("modules", len(c.Modules)))
	return nil
}
