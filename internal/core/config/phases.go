package config

const (
	phase1Title = "Core Backend Schema, Models & Configuration"
	phase2Title = "Backend Business Logic & Core Operations"
	phase3Title = "Server-Side Logic, Middleware & API Routes"
	phase4Title = "Application Logic from Frontend Files"

	phase1Description = "This phase documents the core database schema, type definitions, and configuration files that form the foundation of the backend system."
	phase2Description = "This phase documents all backend business logic including mutations, queries, action functions, code execution, collaboration features, file/folder operations, user management, payment integration, and scheduled jobs."
	phase3Description = "This phase documents server-side middleware, authentication checks, request/response handling, and API route implementations."
	phase4Description = "This phase extracts business logic, state management, event handlers, data processing functions, and utility code from frontend component files. JSX rendering code and pure UI elements are excluded."
)

// DefaultPhases is the phase layout used when the config file declares none.
func DefaultPhases() []Phase {
	return []Phase{
		{
			Number:      1,
			Title:       phase1Title,
			Description: phase1Description,
			Files: []string{
				"convex/schema.ts",
				"convex/_generated/dataModel.d.ts",
				"src/types/index.ts",
				"convex/auth.config.ts",
				"next.config.ts",
				"vercel.json",
				"tsconfig.json",
			},
		},
		{
			Number:      2,
			Title:       phase2Title,
			Description: phase2Description,
			Files: []string{
				"convex/codeExecution.ts",
				"convex/codeExecutions.ts",
				"convex/collaboration.ts",
				"convex/sessionActivity.ts",
				"convex/sessionFiles.ts",
				"convex/sessionFolders.ts",
				"convex/files.ts",
				"convex/folders.ts",
				"convex/snippets.ts",
				"convex/users.ts",
				"convex/lemonSqueezy.ts",
				"convex/http.ts",
				"convex/crons.ts",
				"convex/migration.ts",
			},
		},
		{
			Number:      3,
			Title:       phase3Title,
			Description: phase3Description,
			Files: []string{
				"src/middleware.ts",
				"src/app/api/session-leave/route.ts",
			},
		},
		{
			Number:       4,
			Title:        phase4Title,
			Description:  phase4Description,
			ExtractLogic: true,
			Files: []string{
				"src/store/useCodeEditorStore.ts",
				"src/hooks/useSessionActivity.ts",
				"src/utils/sessionId.ts",
				"src/app/(root)/_components/EditorPanel.tsx",
				"src/app/(root)/_components/OutputPanel.tsx",
				"src/app/(root)/_components/ShareSnippetDialog.tsx",
				"src/app/(root)/_components/LanguageSelector.tsx",
				"src/app/(root)/_components/ThemeSelector.tsx",
				"src/components/MultiFileEditor.tsx",
				"src/components/MultiFileEditorSimple.tsx",
				"src/components/FileOperationsPanel.tsx",
				"src/components/FileTree.tsx",
				"src/components/collaboration/SessionManager.tsx",
				"src/components/collaboration/CollaborationIntegration.tsx",
				"src/components/collaboration/CollaborativeEditor.tsx",
				"src/components/collaboration/CollaborativeFileTree.tsx",
				"src/components/collaboration/MultiSessionFileEditor.tsx",
				"src/components/collaboration/SavedSessions.tsx",
			},
		},
	}
}
