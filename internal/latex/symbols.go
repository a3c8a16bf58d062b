package latex

// Symbols 命令到 Unicode 的直接映射
var Symbols = map[string]string{
	// 希腊字母
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ", `\epsilon`: "ε",
	`\varepsilon`: "ε", `\zeta`: "ζ", `\eta`: "η", `\theta`: "θ", `\vartheta`: "ϑ",
	`\iota`: "ι", `\kappa`: "κ", `\lambda`: "λ", `\mu`: "μ", `\nu`: "ν",
	`\xi`: "ξ", `\pi`: "π", `\rho`: "ρ", `\sigma`: "σ", `\tau`: "τ",
	`\upsilon`: "υ", `\phi`: "φ", `\varphi`: "φ", `\chi`: "χ", `\psi`: "ψ",
	`\omega`: "ω",
	`\Gamma`: "Γ", `\Delta`: "Δ", `\Theta`: "Θ", `\Lambda`: "Λ", `\Xi`: "Ξ",
	`\Pi`: "Π", `\Sigma`: "Σ", `\Upsilon`: "Υ", `\Phi`: "Φ", `\Psi`: "Ψ",
	`\Omega`: "Ω",

	// 运算符与关系
	`\pm`: "±", `\mp`: "∓", `\times`: "×", `\div`: "÷", `\cdot`: "·",
	`\circ`: "∘", `\bullet`: "•", `\ast`: "∗", `\oplus`: "⊕", `\otimes`: "⊗",
	`\leq`: "≤", `\le`: "≤", `\geq`: "≥", `\ge`: "≥", `\neq`: "≠", `\ne`: "≠",
	`\approx`: "≈", `\equiv`: "≡", `\sim`: "∼", `\simeq`: "≃", `\cong`: "≅",
	`\propto`: "∝", `\ll`: "≪", `\gg`: "≫",
	`\in`: "∈", `\notin`: "∉", `\subset`: "⊂", `\subseteq`: "⊆", `\supset`: "⊃",
	`\supseteq`: "⊇", `\cup`: "∪", `\cap`: "∩", `\emptyset`: "∅", `\varnothing`: "∅",
	`\forall`: "∀", `\exists`: "∃", `\neg`: "¬", `\land`: "∧", `\lor`: "∨",
	`\wedge`: "∧", `\vee`: "∨",

	// 大型运算符
	`\sum`: "∑", `\prod`: "∏", `\int`: "∫", `\iint`: "∬", `\oint`: "∮",
	`\partial`: "∂", `\nabla`: "∇", `\infty`: "∞",

	// 箭头
	`\to`: "→", `\rightarrow`: "→", `\leftarrow`: "←", `\gets`: "←",
	`\Rightarrow`: "⇒", `\Leftarrow`: "⇐", `\leftrightarrow`: "↔",
	`\Leftrightarrow`: "⇔", `\iff`: "⇔", `\implies`: "⇒", `\mapsto`: "↦",
	`\rightleftharpoons`: "⇌", `\uparrow`: "↑", `\downarrow`: "↓",

	// 杂项
	`\degree`: "°", `\angle`: "∠", `\perp`: "⊥", `\parallel`: "∥",
	`\triangle`: "△", `\therefore`: "∴", `\because`: "∵", `\ldots`: "…",
	`\cdots`: "⋯", `\dots`: "…", `\prime`: "′", `\hbar`: "ℏ", `\ell`: "ℓ",
	`\langle`: "⟨", `\rangle`: "⟩", `\lfloor`: "⌊", `\rfloor`: "⌋",
	`\lceil`: "⌈", `\rceil`: "⌉", `\{`: "{", `\}`: "}", `\%`: "%", `\$`: "$",
	`\&`: "&", `\#`: "#", `\_`: "_", `\,`: " ", `\;`: " ", `\:`: " ",
	`\!`: "", `\quad`: " ", `\qquad`: "  ", `\\`: "\n",

	// 函数名
	`\sin`: "sin", `\cos`: "cos", `\tan`: "tan", `\cot`: "cot", `\sec`: "sec",
	`\csc`: "csc", `\log`: "log", `\ln`: "ln", `\exp`: "exp", `\lim`: "lim",
	`\max`: "max", `\min`: "min", `\sup`: "sup", `\inf`: "inf", `\det`: "det",
	`\gcd`: "gcd", `\lcm`: "lcm", `\arcsin`: "arcsin", `\arccos`: "arccos",
	`\arctan`: "arctan", `\sinh`: "sinh", `\cosh`: "cosh", `\tanh`: "tanh",
}

// NotMap \not 组合的专用字符
var NotMap = map[string]string{
	"=": "≠", "<": "≮", ">": "≯", "∈": "∉", "≡": "≢", "⊂": "⊄", "⊆": "⊈",
	"≤": "≰", "≥": "≱", "∼": "≁", "≈": "≉",
}

// Superscripts 可用上标字符
var Superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶',
	'7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽',
	')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ', 'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ',
	'e': 'ᵉ', 'f': 'ᶠ', 'g': 'ᵍ', 'h': 'ʰ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ',
	'm': 'ᵐ', 'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ', 'u': 'ᵘ',
	'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ', '∘': '°',
}

// Subscripts 可用下标字符
var Subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆',
	'7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋', '=': '₌', '(': '₍',
	')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ',
	'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ',
	't': 'ₜ', 'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

// Accents 组合附加符号
var Accents = map[string]rune{
	`\hat`: '\u0302', `\bar`: '\u0304', `\overline`: '\u0305', `\vec`: '\u20D7',
	`\dot`: '\u0307', `\ddot`: '\u0308', `\tilde`: '\u0303', `\underline`: '\u0332',
}

// FracMap 常见分数的单字符形式
var FracMap = map[[2]string]string{
	{"1", "2"}: "½", {"1", "3"}: "⅓", {"2", "3"}: "⅔", {"1", "4"}: "¼",
	{"3", "4"}: "¾", {"1", "5"}: "⅕", {"1", "6"}: "⅙", {"1", "8"}: "⅛",
}

// Blackboard \mathbb 字母
var Blackboard = map[rune]rune{
	'N': 'ℕ', 'Z': 'ℤ', 'Q': 'ℚ', 'R': 'ℝ', 'C': 'ℂ', 'P': 'ℙ', 'H': 'ℍ',
}
