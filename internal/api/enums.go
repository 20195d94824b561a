package api

// Each enum is a string type whose String method is its wire value.

type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

func (c Compression) String() string { return string(c) }

type DeploymentStatus string

const (
	DeploymentStatusWaiting    DeploymentStatus = "waiting"
	DeploymentStatusProcessing DeploymentStatus = "processing"
	DeploymentStatusBuilding   DeploymentStatus = "building"
	DeploymentStatusReady      DeploymentStatus = "ready"
	DeploymentStatusCanceled   DeploymentStatus = "canceled"
	DeploymentStatusFailed     DeploymentStatus = "failed"
)

func (s DeploymentStatus) String() string { return string(s) }

// IsTerminal reports whether the build has finished, successfully or not.
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case DeploymentStatusReady, DeploymentStatusCanceled, DeploymentStatusFailed:
		return true
	default:
		return false
	}
}

type DeploymentDownloadType string

const (
	DeploymentDownloadTypeSource DeploymentDownloadType = "source"
	DeploymentDownloadTypeOutput DeploymentDownloadType = "output"
)

func (t DeploymentDownloadType) String() string { return string(t) }

type MessageStatus string

const (
	MessageStatusDraft      MessageStatus = "draft"
	MessageStatusProcessing MessageStatus = "processing"
	MessageStatusScheduled  MessageStatus = "scheduled"
	MessageStatusSent       MessageStatus = "sent"
	MessageStatusFailed     MessageStatus = "failed"
)

func (s MessageStatus) String() string { return string(s) }

type Runtime string

const (
	RuntimeNode18    Runtime = "node-18.0"
	RuntimeNode20    Runtime = "node-20.0"
	RuntimeNode22    Runtime = "node-22"
	RuntimePython39  Runtime = "python-3.9"
	RuntimePython312 Runtime = "python-3.12"
	RuntimeGo123     Runtime = "go-1.23"
	RuntimeBun13     Runtime = "bun-1.3"
	RuntimeDeno20    Runtime = "deno-2.0"
	RuntimeDart35    Runtime = "dart-3.5"
	RuntimePHP83     Runtime = "php-8.3"
	RuntimeRuby33    Runtime = "ruby-3.3"
)

func (r Runtime) String() string { return string(r) }

type Framework string

const (
	FrameworkAnalog    Framework = "analog"
	FrameworkAngular   Framework = "angular"
	FrameworkNextjs    Framework = "nextjs"
	FrameworkReact     Framework = "react"
	FrameworkNuxt      Framework = "nuxt"
	FrameworkVue       Framework = "vue"
	FrameworkSvelteKit Framework = "sveltekit"
	FrameworkAstro     Framework = "astro"
	FrameworkRemix     Framework = "remix"
	FrameworkFlutter   Framework = "flutter"
	FrameworkVite      Framework = "vite"
	FrameworkOther     Framework = "other"
)

func (f Framework) String() string { return string(f) }
