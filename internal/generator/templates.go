package generator

import "github.com/solosprint/sprint-engine/internal/models"

// projectTemplate is one renderable project idea. The {keyword} placeholder
// is substituted at generation time; {track} only appears in the generic
// fallback.
type projectTemplate struct {
	Title        string
	Description  string
	Technologies []string
}

// fallbackTemplate is used when a track has no templates at all
var fallbackTemplate = projectTemplate{
	Title:        "{keyword} Project",
	Description:  "Build a project focused on {keyword}. Learn and practice {track} development.",
	Technologies: []string{"General Development"},
}

// projectTemplates maps track and difficulty to candidate project ideas.
// Loaded once; never mutated.
var projectTemplates = map[models.Track]map[models.Difficulty][]projectTemplate{
	models.TrackFrontend: {
		models.DifficultyBeginner: {
			{
				Title:        "{keyword} Landing Page",
				Description:  "Build a beautiful landing page for {keyword}. Learn HTML structure, CSS styling, and responsive design while creating a professional-looking website.",
				Technologies: []string{"HTML", "CSS", "Responsive Design"},
			},
			{
				Title:        "{keyword} Showcase Website",
				Description:  "Create a showcase website for {keyword}. Practice modern web design, animations, and user experience principles.",
				Technologies: []string{"HTML", "CSS", "JavaScript", "Animations"},
			},
			{
				Title:        "Interactive {keyword} App",
				Description:  "Build an interactive web application focused on {keyword}. Learn JavaScript fundamentals and DOM manipulation.",
				Technologies: []string{"HTML", "CSS", "JavaScript", "DOM"},
			},
		},
		models.DifficultyIntermediate: {
			{
				Title:        "{keyword} Dashboard",
				Description:  "Create a dynamic dashboard for {keyword}. Learn advanced JavaScript, API integration, and data visualization.",
				Technologies: []string{"JavaScript", "APIs", "Charts", "Data Visualization"},
			},
			{
				Title:        "{keyword} Management System",
				Description:  "Build a management system for {keyword}. Practice state management, local storage, and complex UI interactions.",
				Technologies: []string{"JavaScript", "Local Storage", "State Management"},
			},
		},
		models.DifficultyAdvanced: {
			{
				Title:        "Real-time {keyword} Platform",
				Description:  "Develop a real-time platform for {keyword}. Integrate WebSockets, handle complex state, and create a scalable architecture.",
				Technologies: []string{"WebSockets", "Advanced JavaScript", "Real-time Updates"},
			},
		},
	},
	models.TrackBackend: {
		models.DifficultyBeginner: {
			{
				Title:        "{keyword} API",
				Description:  "Build a RESTful API for {keyword}. Learn backend fundamentals, HTTP methods, and API design.",
				Technologies: []string{"Python", "Flask", "REST API"},
			},
		},
		models.DifficultyIntermediate: {
			{
				Title:        "{keyword} Management API",
				Description:  "Create a comprehensive API for managing {keyword}. Implement CRUD operations, authentication, and data validation.",
				Technologies: []string{"Python", "Flask/Django", "REST API", "Authentication"},
			},
		},
		models.DifficultyAdvanced: {
			{
				Title:        "Scalable {keyword} Backend",
				Description:  "Build a production-ready backend for {keyword}. Implement caching, database optimization, and microservices architecture.",
				Technologies: []string{"Django", "PostgreSQL", "Redis", "Caching"},
			},
		},
	},
	models.TrackReact: {
		models.DifficultyBeginner: {
			{
				Title:        "{keyword} React App",
				Description:  "Build a React application for {keyword}. Learn component-based architecture, JSX, and React hooks.",
				Technologies: []string{"React", "JSX", "Hooks", "Components"},
			},
		},
		models.DifficultyIntermediate: {
			{
				Title:        "{keyword} React Dashboard",
				Description:  "Create a React dashboard for {keyword}. Practice state management, API integration, and component composition.",
				Technologies: []string{"React", "State Management", "APIs", "Context API"},
			},
		},
		models.DifficultyAdvanced: {
			{
				Title:        "Advanced {keyword} React App",
				Description:  "Develop a complex React application for {keyword}. Implement advanced patterns, performance optimization, and testing.",
				Technologies: []string{"React", "Redux", "Testing", "Performance"},
			},
		},
	},
	models.TrackPython: {
		models.DifficultyBeginner: {
			{
				Title:        "{keyword} Data Analysis",
				Description:  "Analyze {keyword} data using Python. Learn pandas, data manipulation, and basic visualization.",
				Technologies: []string{"Python", "pandas", "matplotlib", "Data Analysis"},
			},
		},
		models.DifficultyIntermediate: {
			{
				Title:        "{keyword} Automation Script",
				Description:  "Create an automation script for {keyword}. Learn file operations, APIs, and workflow automation.",
				Technologies: []string{"Python", "Automation", "APIs", "File Operations"},
			},
		},
		models.DifficultyAdvanced: {
			{
				Title:        "Advanced {keyword} System",
				Description:  "Build an advanced system for {keyword}. Implement machine learning, data pipelines, and complex algorithms.",
				Technologies: []string{"Python", "Machine Learning", "Data Pipelines"},
			},
		},
	},
	models.TrackNodeJS: {
		models.DifficultyBeginner: {
			{
				Title:        "{keyword} Node.js API",
				Description:  "Build a Node.js API for {keyword}. Learn Express, routing, and server-side JavaScript.",
				Technologies: []string{"Node.js", "Express", "REST API"},
			},
		},
		models.DifficultyIntermediate: {
			{
				Title:        "{keyword} Node.js Service",
				Description:  "Create a Node.js service for {keyword}. Implement middleware, authentication, and database integration.",
				Technologies: []string{"Node.js", "Express", "MongoDB", "Authentication"},
			},
		},
		models.DifficultyAdvanced: {
			{
				Title:        "Scalable {keyword} Node.js App",
				Description:  "Develop a scalable Node.js application for {keyword}. Implement microservices, real-time features, and optimization.",
				Technologies: []string{"Node.js", "Microservices", "WebSockets", "Performance"},
			},
		},
	},
	models.TrackFullstack: {
		models.DifficultyBeginner: {
			{
				Title:        "{keyword} Full-Stack App",
				Description:  "Build a complete full-stack application for {keyword}. Connect frontend and backend, handle data flow, and deploy.",
				Technologies: []string{"React", "Node.js", "Full-Stack", "Deployment"},
			},
		},
		models.DifficultyIntermediate: {
			{
				Title:        "{keyword} Full-Stack Platform",
				Description:  "Create a full-stack platform for {keyword}. Implement authentication, real-time features, and complex state management.",
				Technologies: []string{"React", "Node.js", "Authentication", "Real-time"},
			},
		},
		models.DifficultyAdvanced: {
			{
				Title:        "Enterprise {keyword} Platform",
				Description:  "Develop an enterprise-grade platform for {keyword}. Implement advanced architecture, scalability, and security.",
				Technologies: []string{"React", "Node.js", "Microservices", "Security"},
			},
		},
	},
}

// Keywords is the built-in pool used when a request carries no keywords or
// interests. Exposed so the API can surface sample suggestions.
var Keywords = []string{
	"E-commerce", "Social Media", "Fitness", "Education", "Finance", "Travel",
	"Food", "Music", "Gaming", "Health", "Productivity", "Entertainment",
	"Shopping", "News", "Weather", "Sports", "Photography", "Art", "Books",
	"Movies", "Events", "Real Estate", "Job Board", "Blog", "Portfolio",
}

// stepTemplate is one entry of the master step list
type stepTemplate struct {
	Title            string
	Description      string
	Technologies     []string
	EstimatedTime    int // minutes; 0 means split the timeframe budget evenly
	LearningOutcomes string
}

// genericSteps are the lifecycle steps every generated project starts with
var genericSteps = []stepTemplate{
	{
		Title:            "Project Setup and Planning",
		Description:      "Set up your development environment, create project structure, and plan your approach.",
		Technologies:     []string{"Project Setup"},
		EstimatedTime:    30,
		LearningOutcomes: "Project structure and planning",
	},
	{
		Title:            "Core Functionality Implementation",
		Description:      "Implement the core features and functionality of your project.",
		Technologies:     []string{"Core Development"},
		EstimatedTime:    120,
		LearningOutcomes: "Core feature development",
	},
	{
		Title:            "User Interface Development",
		Description:      "Design and implement the user interface. Make it intuitive and user-friendly.",
		Technologies:     []string{"UI/UX"},
		EstimatedTime:    90,
		LearningOutcomes: "User interface design",
	},
	{
		Title:            "Data Management",
		Description:      "Implement data storage, retrieval, and management functionality.",
		Technologies:     []string{"Data Management"},
		EstimatedTime:    90,
		LearningOutcomes: "Data handling",
	},
	{
		Title:            "Testing and Debugging",
		Description:      "Test your application, fix bugs, and ensure everything works correctly.",
		Technologies:     []string{"Testing", "Debugging"},
		EstimatedTime:    60,
		LearningOutcomes: "Testing and quality assurance",
	},
	{
		Title:            "Polish and Deployment",
		Description:      "Add final touches, optimize performance, and deploy your project.",
		Technologies:     []string{"Deployment", "Optimization"},
		EstimatedTime:    60,
		LearningOutcomes: "Deployment and optimization",
	},
}

// trackSteps are appended after the generic lifecycle steps. Only frontend,
// backend and react carry extras.
var trackSteps = map[models.Track][]stepTemplate{
	models.TrackFrontend: {
		{
			Title:         "Responsive Design",
			Description:   "Make your application work perfectly on all device sizes.",
			Technologies:  []string{"Responsive Design", "Media Queries"},
			EstimatedTime: 60,
		},
		{
			Title:         "JavaScript Interactivity",
			Description:   "Add interactive features and dynamic behavior.",
			Technologies:  []string{"JavaScript", "DOM Manipulation"},
			EstimatedTime: 90,
		},
	},
	models.TrackBackend: {
		{
			Title:         "API Endpoints",
			Description:   "Create RESTful API endpoints for your application.",
			Technologies:  []string{"REST API", "Endpoints"},
			EstimatedTime: 90,
		},
		{
			Title:         "Database Integration",
			Description:   "Set up and integrate a database for data persistence.",
			Technologies:  []string{"Database", "ORM"},
			EstimatedTime: 90,
		},
	},
	models.TrackReact: {
		{
			Title:         "Component Architecture",
			Description:   "Design and build reusable React components.",
			Technologies:  []string{"React", "Components"},
			EstimatedTime: 90,
		},
		{
			Title:         "State Management",
			Description:   "Implement state management using hooks or context.",
			Technologies:  []string{"React Hooks", "State Management"},
			EstimatedTime: 90,
		},
	},
}

var advancedFeaturesStep = stepTemplate{
	Title:         "Advanced Features",
	Description:   "Implement advanced features and functionality.",
	Technologies:  []string{"Advanced Development"},
	EstimatedTime: 120,
}

// difficultySteps are appended last: intermediate adds one step, advanced
// adds three.
var difficultySteps = map[models.Difficulty][]stepTemplate{
	models.DifficultyIntermediate: {
		advancedFeaturesStep,
	},
	models.DifficultyAdvanced: {
		advancedFeaturesStep,
		{
			Title:         "Performance Optimization",
			Description:   "Optimize your application for performance and scalability.",
			Technologies:  []string{"Performance", "Optimization"},
			EstimatedTime: 90,
		},
		{
			Title:         "Security Implementation",
			Description:   "Add security measures and best practices.",
			Technologies:  []string{"Security", "Best Practices"},
			EstimatedTime: 90,
		},
	},
}

// masterSteps builds the full ordered step list for a track/difficulty pair
// before timeframe slicing.
func masterSteps(track models.Track, difficulty models.Difficulty) []stepTemplate {
	steps := make([]stepTemplate, 0, len(genericSteps)+5)
	steps = append(steps, genericSteps...)
	steps = append(steps, trackSteps[track]...)
	steps = append(steps, difficultySteps[difficulty]...)
	return steps
}
