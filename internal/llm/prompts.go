package llm

// Default prompt templates. Accounts and users may override individual
// templates; overrides use the same text/template fields.

const PromptGenerateSolution = `You are an expert competitive programming assistant.

Generate a Python 3 LeetCode solution for the following problem.
Return ONLY valid Python code, no markdown, no explanation.

Requirements:
1) Keep LeetCode-compatible signature/class style.
2) Include only code needed to solve the problem.
3) Prefer clear and robust logic over micro-optimizations.
4) Use only Python standard library (no pandas, numpy, pytest, or third-party libs).
5) If using forward type references (TreeNode/ListNode), avoid runtime NameError.
   Prefer ` + "`from __future__ import annotations`" + ` or quoted annotations.

Problem metadata:
- Frontend ID: {{.FrontendID}}
- Title: {{.Title}}
- Difficulty: {{.Difficulty}}
- Slug: {{.TitleSlug}}

Starter code (python3):
{{.StarterCode}}

Problem statement (HTML may be present):
{{.Content}}

Sample test case (raw):
{{.SampleTestCase}}

JSON metadata:
{{.MetadataJSON}}`

const PromptGenerateTests = `You are a software test engineer.

Given a LeetCode solution module in Python, generate a test script.
Return ONLY valid Python code, no markdown.

Constraints:
1) The script must import ` + "`Solution`" + ` from ` + "`solution`" + ` module.
2) It must define ` + "`run_tests()`" + ` and execute it under ` + "`if __name__ == \"__main__\":`" + `.
3) Use official examples from the problem statement when possible.
4) Add additional edge cases with deterministic expected outputs.
5) On failure, raise AssertionError with clear messages.
6) Use only Python standard library (no pandas, numpy, pytest, or third-party libs).

Problem metadata:
- Frontend ID: {{.FrontendID}}
- Title: {{.Title}}
- Difficulty: {{.Difficulty}}
- Slug: {{.TitleSlug}}

Problem statement (HTML may be present):
{{.Content}}

Sample test case (raw):
{{.SampleTestCase}}

JSON metadata:
{{.MetadataJSON}}

Solution code:
{{.SolutionCode}}`

const PromptFixSolution = `You are debugging a failing LeetCode Python solution.

Return ONLY corrected Python solution code, no markdown.

Problem metadata:
- Frontend ID: {{.FrontendID}}
- Title: {{.Title}}
- Difficulty: {{.Difficulty}}
- Slug: {{.TitleSlug}}

Current solution code:
{{.SolutionCode}}

Test script:
{{.TestsCode}}

Failure output from test run:
{{.FailureOutput}}

Fix the solution so these tests pass while keeping LeetCode-compatible style.`

const PromptPostGeneration = `Voce eh um assistente de escrita de posts para Linkedin. Sua tarefa eh criar um post envolvente e conciso com base nas informacoes fornecidas.
Siga estas diretrizes ao criar o post:
1. Mantenha o post curto e direto ao ponto, com no maximo 1200 caracteres.
2. Use uma linguagem clara e cativante que ressoe com o publico alvo.
3. Inclua uma chamada para acao que incentive o engajamento, como curtir, comentar ou compartilhar.
4. Explique jargoes ou termos tecnicos que possam confundir os leitores.
5. Certifique-se de que o tom do post esteja alinhado com a tematica.
6. Use uma lingua natural e fluida, como se fosse escrito por um humano da geracao atual.
7. Adapte o estilo do post para a plataforma de rede social especifica Linkedin.
8. deve usar hashtags relevantes para aumentar o alcance do post.
9. Dar os creditos aos autores ou fontes originais das informacoes.
10. coloque a URL no final do post.
11. Quero que escreva apenas o texto do post, sem saudacoes ou despedidas.

Aqui estao as informacoes para o post:
{{.Information}}`

const PromptTranslation = `Voce eh um assistente de escrita de posts para Linkedin. Sua tarefa eh traduzir o post gerado para o ingles dos estados unidos, mantendo o tom e estilo original.
Siga estas diretrizes ao traduzir o post:
1. Mantenha o post curto e direto ao ponto, com no maximo 1200 caracteres.
2. Quero que escreva apenas o texto do post traduzido, sem saudacoes ou despedidas.
Aqui esta o post em portugues:
{{.PortuguesePost}}`
