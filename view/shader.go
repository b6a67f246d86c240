package view

const vertex = `
#version 420

in  vec3 vertPos;
in  vec2 vertTexCoord;
out vec2 fragTexCoord;

void main() {
    fragTexCoord = vertTexCoord;
    gl_Position  = vec4(vertPos, 1);
}
`

const fragment = `
#version 420

uniform vec4 highlight;  // Selected frame in texture space: x0, y0, x1, y1.
uniform vec2 texelSize;  // Size of a single texel in texture space.

layout (binding = 0) uniform sampler2D atlas;

in  vec2 fragTexCoord;
out vec4 outputColor;

const vec4 checkerA = vec4(0.20, 0.20, 0.20, 1);
const vec4 checkerB = vec4(0.28, 0.28, 0.28, 1);
const vec4 outline  = vec4(1.00, 0.10, 0.60, 1);

void main() {
    // Checkerboard background, so transparent padding remains visible.
    ivec2 cell = ivec2(gl_FragCoord.xy) / 8;
    vec4 bg = ((cell.x + cell.y) % 2 == 0) ? checkerA : checkerB;

    vec4 c = texture(atlas, fragTexCoord);
    outputColor = mix(bg, vec4(c.rgb, 1), c.a);

    // Outline the selected frame, one texel wide, just outside its edges.
    vec2 lo = highlight.xy - texelSize;
    vec2 hi = highlight.zw + texelSize;
    vec2 p  = fragTexCoord;

    bool outer = all(greaterThanEqual(p, lo)) && all(lessThan(p, hi));
    bool inner = all(greaterThanEqual(p, highlight.xy)) && all(lessThan(p, highlight.zw));

    if (outer && !inner) {
        outputColor = outline;
    }
}
`
